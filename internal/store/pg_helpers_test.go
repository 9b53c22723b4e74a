package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	t.Run("defaults applied when zero", func(t *testing.T) {
		open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
		assert.Equal(t, 20, open)
		assert.Equal(t, 5, idle)
		assert.Equal(t, 5*time.Minute, lifetime)
		assert.Equal(t, 10*time.Minute, idleTime)
	})

	t.Run("idle clamped to open", func(t *testing.T) {
		open, idle, _, _ := NormalizeConnectionPoolSettings(4, 10, time.Minute, time.Minute)
		assert.Equal(t, 4, open)
		assert.Equal(t, 4, idle)
	})

	t.Run("explicit values kept", func(t *testing.T) {
		open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(50, 10, time.Hour, time.Hour)
		assert.Equal(t, 50, open)
		assert.Equal(t, 10, idle)
		assert.Equal(t, time.Hour, lifetime)
		assert.Equal(t, time.Hour, idleTime)
	})
}

func TestCalculateSafeBatchSize(t *testing.T) {
	t.Run("small sets insert in one batch", func(t *testing.T) {
		assert.Equal(t, 100, calculateSafeBatchSize(100, 10))
	})

	t.Run("large sets stay under the parameter limit", func(t *testing.T) {
		size := calculateSafeBatchSize(1_000_000, 10)
		assert.LessOrEqual(t, size*10, 65535-1000)
		assert.Greater(t, size, 0)
	})

	t.Run("wide rows never return zero", func(t *testing.T) {
		assert.Equal(t, 1, calculateSafeBatchSize(10, 200_000))
	})
}
