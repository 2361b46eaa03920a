// internal/pkg/money/money_test.go
package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.InDelta(t, 10.57, Round(10.567), 1e-9)
	assert.InDelta(t, 10.56, Round(10.562), 1e-9)
	assert.InDelta(t, 0.0, Round(0), 1e-9)
	assert.InDelta(t, -2.35, Round(-2.349), 1e-9)
	assert.InDelta(t, 115.00, Round(100.0+10.0+5.0), 1e-9)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(100.00, 100.00))
	assert.True(t, Equal(100.00, 100.009), "within tolerance")
	assert.True(t, Equal(100.009, 100.00))
	assert.False(t, Equal(100.00, 100.02))
}
