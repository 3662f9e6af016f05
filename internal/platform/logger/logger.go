// Package logger builds named zap loggers for the service.
package logger

import "go.uber.org/zap"

// NewNamed creates a logger named after the service. Development environments
// get human-readable console output; everything else logs JSON.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if appEnv == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
