package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type syncCountingCore struct {
	zapcore.Core
	syncs *int
}

func (c syncCountingCore) With(fields []zapcore.Field) zapcore.Core {
	return syncCountingCore{Core: c.Core.With(fields), syncs: c.syncs}
}

func (c syncCountingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c syncCountingCore) Sync() error {
	*c.syncs++
	return c.Core.Sync()
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantLogs int
	}{
		{name: "clean shutdown", wantCode: 0},
		{name: "run failed", err: errors.New("listen tcp :8080: address already in use"), wantCode: 1, wantLogs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, logs := observer.New(zap.InfoLevel)
			syncs := 0
			logger := zap.New(syncCountingCore{Core: obs, syncs: &syncs})

			code := exitCode(logger, tt.err)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, 1, syncs)
			assert.Equal(t, tt.wantLogs, logs.FilterMessage("storefront stopped with error").Len())
		})
	}
}
