package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field aliases the zap field type so engine packages only import logging.
type Field = zap.Field

func String(key, val string) Field {
	return zap.String(key, val)
}

func Uint64(key string, val uint64) Field {
	return zap.Uint64(key, val)
}

func Int(key string, val int) Field {
	return zap.Int(key, val)
}

func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

func Error(err error) Field {
	return zap.Error(err)
}

// BigUint logs a 256-bit amount using its decimal string form.
func BigUint(key string, val interface{ String() string }) Field {
	if val == nil {
		return zap.String(key, "nil")
	}
	return zap.String(key, val.String())
}
