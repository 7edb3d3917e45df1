package utils

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger replaces the library logger. The library is silent by default and
// only logs lifecycle events that carry no secret material.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// Logger returns the current library logger.
func Logger() *zerolog.Logger {
	return logger.Load()
}
