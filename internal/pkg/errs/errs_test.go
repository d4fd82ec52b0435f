//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"wasteops/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark(t *testing.T) {
	sentinel := errs.New("thing unavailable")

	t.Run("sentinel is visible to errors.Is", func(t *testing.T) {
		cause := errors.New("connection refused")
		marked := errs.Mark(cause, sentinel)

		assert.ErrorIs(t, marked, sentinel)
		assert.ErrorIs(t, marked, cause)
	})

	t.Run("wrapped causes stay visible through a mark", func(t *testing.T) {
		cause := errors.New("connection refused")
		marked := errs.Mark(errs.Wrap(cause, "reading forecast"), sentinel)

		assert.ErrorIs(t, marked, sentinel)
		assert.ErrorIs(t, marked, cause)
		assert.Contains(t, marked.Error(), "reading forecast")
	})

	t.Run("marking nil yields the bare sentinel", func(t *testing.T) {
		require.ErrorIs(t, errs.Mark(nil, sentinel), sentinel)
	})
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, errs.Wrap(nil, "ignored"))
}
