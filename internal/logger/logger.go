package logger

import (
	"go.uber.org/zap"
)

// New returns a console logger for development and a JSON logger for production.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
