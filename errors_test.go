package geoann

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewErrCarriesKind(t *testing.T) {
	err := newErr(InvalidConfig, "bad alpha")
	var ge *Error
	require.True(t, errors.As(err, &ge))
	require.Equal(t, InvalidConfig, ge.Kind)
	require.Contains(t, err.Error(), "bad alpha")
}

func TestWrapErrUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := wrapErr(OutOfMemory, "allocating visited list", cause)
	require.ErrorIs(t, err, cause)
}
