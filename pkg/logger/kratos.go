package logger

import (
	"context"
	"fmt"
	"os"

	kratoslog "github.com/go-kratos/kratos/v2/log"
)

// KratosLogger Kratos日志适配器，把kratos的键值对日志桥接到内部Logger
type KratosLogger struct {
	logger Logger
}

// NewKratosLogger 创建Kratos日志适配器
func NewKratosLogger(logger Logger) kratoslog.Logger {
	return &KratosLogger{logger: logger}
}

// NewKratosStdLogger 创建带服务元信息的Kratos标准日志器
func NewKratosStdLogger(serviceName, serviceVersion string) kratoslog.Logger {
	base := kratoslog.NewStdLogger(os.Stdout)
	return kratoslog.With(base,
		"ts", kratoslog.DefaultTimestamp,
		"caller", kratoslog.DefaultCaller,
		"service.name", serviceName,
		"service.version", serviceVersion,
	)
}

// Log 实现kratos Logger接口
func (kl *KratosLogger) Log(level kratoslog.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}

	// 解析键值对，msg键作为日志正文，其余作为字段
	fields := make([]Field, 0, len(keyvals)/2)
	var msg string

	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprintf("%v", keyvals[i])
		value := keyvals[i+1]

		if key == "msg" {
			msg = fmt.Sprintf("%v", value)
			continue
		}
		fields = append(fields, F(key, value))
	}

	ctx := context.TODO()
	switch level {
	case kratoslog.LevelDebug:
		kl.logger.Debug(ctx, msg, fields...)
	case kratoslog.LevelInfo:
		kl.logger.Info(ctx, msg, fields...)
	case kratoslog.LevelWarn:
		kl.logger.Warn(ctx, msg, fields...)
	case kratoslog.LevelError:
		kl.logger.Error(ctx, msg, fields...)
	case kratoslog.LevelFatal:
		kl.logger.Fatal(ctx, msg, fields...)
	default:
		kl.logger.Info(ctx, msg, fields...)
	}

	return nil
}
