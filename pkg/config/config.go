package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Relationship RelationshipConfig `mapstructure:"relationship"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig HTTP服务配置
type HTTPConfig struct {
	Network string `mapstructure:"network"`
	Addr    string `mapstructure:"addr"`
	Timeout string `mapstructure:"timeout"`
}

// GRPCConfig gRPC服务配置
type GRPCConfig struct {
	Network string `mapstructure:"network"`
	Addr    string `mapstructure:"addr"`
	Timeout string `mapstructure:"timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MongoDB    MongoDBConfig    `mapstructure:"mongodb"`
	PostgreSQL PostgreSQLConfig `mapstructure:"postgresql"`
}

// MongoDBConfig MongoDB配置
type MongoDBConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"db_name"`
}

// PostgreSQLConfig PostgreSQL配置
type PostgreSQLConfig struct {
	DSN    string `mapstructure:"dsn"`
	DBName string `mapstructure:"db_name"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

// RelationshipConfig 关系服务配置
type RelationshipConfig struct {
	PairLockTTL int `mapstructure:"pair_lock_ttl"` // 配对锁TTL（秒）
}

// NotificationConfig 通知服务配置
type NotificationConfig struct {
	RetentionHours int `mapstructure:"retention_hours"` // 通知保留时长（小时）
	UnreadCacheTTL int `mapstructure:"unread_cache_ttl"` // 未读数缓存TTL（秒）
}

// LoadConfig 加载服务配置，默认值 < 配置文件 < 环境变量
func LoadConfig(serviceName string) *Config {
	v := viper.New()

	setDefaults(v, serviceName)

	// 支持通过CONFIG_FILE指定yaml配置文件
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile := v.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Sprintf("读取配置文件失败: %v", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("解析配置失败: %v", err))
	}

	return &cfg
}

// setDefaults 按服务名设置默认配置
func setDefaults(v *viper.Viper, serviceName string) {
	var defaultHTTPPort, defaultGRPCPort string

	switch serviceName {
	case "relationship-service":
		defaultHTTPPort = "21001"
		defaultGRPCPort = "22001"
	case "notification-service":
		defaultHTTPPort = "21002"
		defaultGRPCPort = "22002"
	default:
		panic(fmt.Sprintf("未知的服务名称: %s，支持的服务名称: relationship-service, notification-service", serviceName))
	}

	v.SetDefault("app.name", serviceName)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.jwt_secret", "bhakti-social")

	v.SetDefault("server.http.network", "tcp")
	v.SetDefault("server.http.addr", ":"+defaultHTTPPort)
	v.SetDefault("server.http.timeout", "30s")
	v.SetDefault("server.grpc.network", "tcp")
	v.SetDefault("server.grpc.addr", ":"+defaultGRPCPort)
	v.SetDefault("server.grpc.timeout", "30s")

	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.db_name", mongoDBName(serviceName))
	v.SetDefault("database.postgresql.dsn",
		"host=localhost user=postgres password=postgres dbname="+pgDBName(serviceName)+" port=5432 sslmode=disable TimeZone=Asia/Kolkata")
	v.SetDefault("database.postgresql.db_name", pgDBName(serviceName))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", serviceName+"-group")

	v.SetDefault("relationship.pair_lock_ttl", 5)

	v.SetDefault("notification.retention_hours", 24)
	v.SetDefault("notification.unread_cache_ttl", 300)
}

// mongoDBName 服务对应的MongoDB库名
func mongoDBName(serviceName string) string {
	switch serviceName {
	case "relationship-service":
		return "relationshipDB"
	case "notification-service":
		return "notificationDB"
	}
	return serviceName + "DB"
}

// pgDBName 服务对应的PostgreSQL库名
func pgDBName(serviceName string) string {
	return strings.ReplaceAll(serviceName, "-", "_") + "_db"
}
