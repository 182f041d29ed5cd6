package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefinesSplitsNameValue(t *testing.T) {
	vars, err := parseDefines([]string{"title=Hello World", "count=3"})
	require.NoError(t, err)
	require.Equal(t, "Hello World", vars["title"])
	require.Equal(t, "3", vars["count"])
}

func TestParseDefinesRejectsMissingEquals(t *testing.T) {
	_, err := parseDefines([]string{"no-equals-sign"})
	require.Error(t, err)
}

func TestParseDefinesEmptyReturnsNil(t *testing.T) {
	vars, err := parseDefines(nil)
	require.NoError(t, err)
	require.Nil(t, vars)
}

func TestDefaultOutputPathSwapsExtension(t *testing.T) {
	require.Equal(t, "app.krb", defaultOutputPath("app.kry"))
	require.Equal(t, "dir/app.krb", defaultOutputPath("dir/app.kry"))
	require.Equal(t, "dir.with.dots/app.krb", defaultOutputPath("dir.with.dots/app.kry"))
}

func TestDefaultOutputPathNoExtension(t *testing.T) {
	require.Equal(t, "app.krb", defaultOutputPath("app"))
}
