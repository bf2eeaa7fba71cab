package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("known environments", func(t *testing.T) {
		for _, env := range []string{EnvDevelopment, EnvProduction} {
			l, err := New(env, LevelInfo)

			require.NoError(t, err, env)
			require.NotNil(t, l)
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)

		require.Error(t, err)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := New(EnvProduction, "loud")

		require.Error(t, err)
	})
}

func TestNoOpLogger(t *testing.T) {
	l := NewNoOpLogger()

	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg", "key", "value")
		l.Warn("msg")
		l.Error("msg")
	})
}
