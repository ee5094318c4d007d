package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fastpai/pkg/config"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// L returns the process-wide logger, building it on first use.
func L() *zap.Logger {
	once.Do(func() {
		var cfg zap.Config
		if config.IsProduction {
			cfg = zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
	})
	return logger
}

// S is a convenience sugared view of L.
func S() *zap.SugaredLogger {
	return L().Sugar()
}
