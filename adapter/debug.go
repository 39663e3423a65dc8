package adapter

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger installs the logger used for query tracing.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

func Logger() *zerolog.Logger {
	return logger.Load()
}

// DebugLog traces a catalog query and its bind arguments at debug level.
func DebugLog(query string, args ...any) {
	l := logger.Load()
	e := l.Debug()
	if !e.Enabled() {
		return
	}
	params := make([]string, len(args))
	for i, a := range args {
		params[i] = fmt.Sprintf("%v", a)
	}
	e.Str("query", query).Strs("args", params).Msg("catalog query")
}
