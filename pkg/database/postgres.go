package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgreSQL PostgreSQL连接管理器
type PostgreSQL struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// NewPostgreSQL 创建PostgreSQL连接
func NewPostgreSQL(dsn string) (*PostgreSQL, error) {
	config := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// 把驱动错误翻译成gorm.ErrDuplicatedKey等统一错误
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %v", err)
	}

	// 配置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &PostgreSQL{
		db:    db,
		sqlDB: sqlDB,
	}, nil
}

// GetDB 获取gorm数据库对象
func (p *PostgreSQL) GetDB() *gorm.DB {
	return p.db
}

// WithContext 获取带上下文的gorm数据库对象
func (p *PostgreSQL) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// AutoMigrate 自动迁移表结构
func (p *PostgreSQL) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

// Ping 检查连接
func (p *PostgreSQL) Ping(ctx context.Context) error {
	return p.sqlDB.PingContext(ctx)
}

// Close 关闭连接
func (p *PostgreSQL) Close() error {
	return p.sqlDB.Close()
}
