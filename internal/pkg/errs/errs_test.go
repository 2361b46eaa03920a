// internal/pkg/errs/errs_test.go
package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesKindAndMessage(t *testing.T) {
	err := New(KindOutOfStock, "insufficient stock for '%s'", "Widget")
	assert.Equal(t, "insufficient stock for 'Widget'", err.Error())
	assert.Equal(t, KindOutOfStock, KindOf(err))
	assert.True(t, IsKind(err, KindOutOfStock))
	assert.False(t, IsKind(err, KindNotFound))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, cause, "failed to reach gateway")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestKindOfUntypedError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("wrapped: %w", errors.New("plain"))))
}

func TestKindOfUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(KindNotFound, "order 7 not found")
	wrapped := fmt.Errorf("lookup failed: %w", inner)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}
