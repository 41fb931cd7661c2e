package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeNotFound, "missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches code buried in the chain", func(t *testing.T) {
		inner := New(CodeStoreFailure, "append failed")
		outer := Wrap(inner, CodeInternal, "assessment not recorded")
		assert.True(t, HasCode(outer, CodeStoreFailure))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("false for plain errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil in, nil out", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves the cause for errors.Is", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(fmt.Errorf("query: %w", cause), CodeStoreFailure, "history read failed")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("outermost code wins", func(t *testing.T) {
		err := Wrap(New(CodeNotFound, "gone"), CodeStoreFailure, "read failed")
		assert.Equal(t, CodeStoreFailure, CodeOf(err))
	})

	t.Run("uncoded errors fall back to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})
}
