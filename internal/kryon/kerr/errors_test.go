package kerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	e := Style("button.kry", 12, "cycle detected: %s -> %s", "a", "b")
	require.Equal(t, "button.kry:12: style: cycle detected: a -> b", e.Error())
}

func TestKindOf(t *testing.T) {
	e := Include("app.kry", 3, "missing file %q", "util.kry")
	wrapped := errors.New("context: " + e.Error())
	_ = wrapped

	kind, ok := KindOf(e)
	require.True(t, ok)
	require.Equal(t, KindInclude, kind)

	_, ok = KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	e := IOWrap(cause, "cannot read %s", "app.kry")
	require.ErrorIs(t, e, cause)
}
