package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger. Development mode switches to the
// human-readable console encoder used during local runs.
func New(development bool) *zap.SugaredLogger {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}
