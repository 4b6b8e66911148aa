package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"

	"github.com/qs3c/brand_go_server/config"
)

// New 根据配置创建 zap logger，release 模式默认输出 JSON
func New(cfg config.LogConfig, mode string) (*zap.Logger, error) {
	var zc zap.Config
	if mode == "release" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	switch cfg.Format {
	case "json":
		zc.Encoding = "json"
	case "console":
		zc.Encoding = "console"
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	return zc.Build()
}

// Gorm 将 gorm 日志接入 zap
func Gorm(l *zap.Logger, level string) gormlogger.Interface {
	gl := zapgorm2.New(l.Named("gorm"))
	gl.IgnoreRecordNotFoundError = true
	return gl.LogMode(ParseGormLevel(level))
}

// ParseGormLevel 解析 gorm 日志级别，未知值按 warn 处理
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
