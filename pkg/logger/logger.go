package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))
	var err error
	L, err = config.Build(
		zap.AddCallerSkip(1),
		// 固定帶上服務名，日誌聚合時跟其他服務區分
		zap.Fields(zap.String("service", "ticketing")),
	)
	if err != nil {
		panic(err)
	}
}

// parseLevel 解析 LOG_LEVEL 環境變數，空值或無法辨識時回到 info
func parseLevel(raw string) zapcore.Level {
	if raw == "" {
		return zapcore.InfoLevel
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// WithComponent 回傳帶有 component 欄位的 logger，供 MQ、handler、service 等使用
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}
