package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDebugEnabled(t *testing.T) {
	t.Setenv("GF_DEBUG", "")
	assert.False(t, DebugEnabled(), "DebugEnabled() should be false when GF_DEBUG is empty")

	t.Setenv("GF_DEBUG", "1")
	assert.True(t, DebugEnabled(), "DebugEnabled() should be true when GF_DEBUG is set")
}

func TestNew(t *testing.T) {
	t.Setenv("GF_DEBUG", "")

	tests := []struct {
		name    string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"default is warn", "", zapcore.WarnLevel, false},
		{"info", "info", zapcore.InfoLevel, false},
		{"error", "error", zapcore.ErrorLevel, false},
		{"invalid", "chatty", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			assert.False(t, l.Core().Enabled(tt.want-1))
		})
	}
}

func TestNew_DebugOverride(t *testing.T) {
	t.Setenv("GF_DEBUG", "true")

	l, err := New("error")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx), "FromContext should fall back to a nop logger")

	l := zap.NewExample()
	ctx = ContextWithLogger(ctx, l)
	assert.Same(t, l, FromContext(ctx))
}
