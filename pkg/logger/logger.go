package logger

import (
	"os"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

func init() {
	var cfg zap.Config

	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = l.Sugar()
}

func Info(msg string, values ...any) {
	log.Infow(msg, values...)
}

func Warn(msg string, values ...any) {
	log.Warnw(msg, values...)
}

func Error(msg string, values ...any) {
	log.Errorw(msg, values...)
}

func Debug(msg string, values ...any) {
	log.Debugw(msg, values...)
}

func Fatal(err error, values ...any) {
	log.Fatalw(err.Error(), values...)
}
