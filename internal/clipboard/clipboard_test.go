package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopy(t *testing.T) {
	var got []byte
	inits := 0
	s := &Service{
		initFn:  func() error { inits++; return nil },
		writeFn: func(b []byte) { got = b },
	}

	assert.NoError(t, s.Copy("package main"))
	assert.NoError(t, s.Copy("second"))
	assert.Equal(t, "second", string(got))
	assert.Equal(t, 1, inits)
}

func TestCopyUnavailable(t *testing.T) {
	wrote := false
	s := &Service{
		initFn:  func() error { return errors.New("no display") },
		writeFn: func([]byte) { wrote = true },
	}

	err := s.Copy("x")
	assert.ErrorIs(t, err, ErrClipboard)
	assert.Contains(t, err.Error(), "no display")
	assert.False(t, wrote)
}
