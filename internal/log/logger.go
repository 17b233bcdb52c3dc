package log

import (
	"go.uber.org/zap"
)

var global = zap.NewNop()

// Init builds the process logger. prod selects the JSON production config,
// otherwise the development console config is used.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	global = l
	return l, nil
}

// L returns the process logger; a no-op logger before Init.
func L() *zap.Logger { return global }

func Sync() { _ = global.Sync() }
