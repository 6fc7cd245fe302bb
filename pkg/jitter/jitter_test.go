package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_Bounds(t *testing.T) {
	for range 100 {
		d := Duration(time.Second, DefaultJitter)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}

	assert.Equal(t, time.Second, Duration(time.Second, 0))
	assert.Equal(t, time.Duration(0), Duration(0, DefaultJitter))
}

func TestBackoff_Ceil(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 8 * time.Second}

	assert.Equal(t, time.Second, b.ceil(0))
	assert.Equal(t, 2*time.Second, b.ceil(1))
	assert.Equal(t, 4*time.Second, b.ceil(2))
	assert.Equal(t, 8*time.Second, b.ceil(3))
	assert.Equal(t, 8*time.Second, b.ceil(10))
}

func TestBackoff_NextCappedWithJitter(t *testing.T) {
	d := Backoff{Base: time.Second, Max: 30 * time.Second, Factor: DefaultJitter}.Next(20)
	assert.GreaterOrEqual(t, d, 30*time.Second)
	assert.LessOrEqual(t, d, 45*time.Second)
}
