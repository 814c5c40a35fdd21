package logger

import "go.uber.org/zap"

func New(environment string) *zap.Logger {
	var l *zap.Logger
	var err error
	if environment == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return l
}
