package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "set", Coalesce("", "set", "fallback"))
	assert.Equal(t, float32(32), Coalesce(float32(0), 32))
	assert.Zero(t, Coalesce(0, 0))
	assert.Zero(t, Coalesce[string]())
}
