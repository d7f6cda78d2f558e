package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"thudl/cmd"
	"thudl/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration " + err.Error())
	}
	logger, err := newLogger(cnf.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger " + err.Error())
	}
	defer logger.Sync()

	if err := cmd.Execute(cnf, logger); err != nil {
		logger.Error("Failed to execute command", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = parsed
	return zapConfig.Build()
}
