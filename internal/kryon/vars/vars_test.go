package vars

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func process(t *testing.T, source string, overrides map[string]string) string {
	t.Helper()
	e := New("t.kry")
	if overrides != nil {
		e.Seed(overrides)
	}
	require.NoError(t, e.Collect(source))
	require.NoError(t, e.Resolve())
	out, err := e.Substitute(source)
	require.NoError(t, err)
	return out
}

func TestBasicDefinitionAndSubstitution(t *testing.T) {
	src := "@variables {\n\tprimary: #FF0000\n}\nApp { background_color: $primary }"
	out := process(t, src, nil)
	require.Contains(t, out, "background_color: #FF0000")
	require.NotContains(t, out, "@variables")
	require.NotContains(t, out, "$primary")
}

func TestTransitiveReferenceResolution(t *testing.T) {
	src := "@variables {\n\tbase: 10px\n\tdouble: $base\n}\nApp { width: $double }"
	out := process(t, src, nil)
	require.Contains(t, out, "width: 10px")
}

func TestLaterDefinitionWinsAmongFileLevelVars(t *testing.T) {
	src := "@variables {\n\tname: first\n\tname: second\n}\nApp { label: $name }"
	out := process(t, src, nil)
	require.Contains(t, out, "label: second")
}

func TestCallerSuppliedVariableWinsOverFileDefinition(t *testing.T) {
	src := "@variables {\n\ttitle: \"from file\"\n}\nApp { window_title: $title }"
	out := process(t, src, map[string]string{"title": "from caller"})
	require.Contains(t, out, "window_title: from caller")
}

func TestCyclicVariableDefinitionIsAnError(t *testing.T) {
	src := "@variables {\n\ta: $b\n\tb: $a\n}\nApp { }"
	e := New("t.kry")
	require.NoError(t, e.Collect(src))
	err := e.Resolve()
	require.Error(t, err)
	require.Contains(t, err.Error(), "cyclic")
}

func TestUndefinedVariableReferenceIsAnError(t *testing.T) {
	src := "App { width: $missing }"
	e := New("t.kry")
	require.NoError(t, e.Collect(src))
	require.NoError(t, e.Resolve())
	_, err := e.Substitute(src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined variable")
}

func TestNestedVariablesBlockIsAnError(t *testing.T) {
	src := "@variables {\n\t@variables {\n\t\ta: 1\n\t}\n}\nApp { }"
	e := New("t.kry")
	err := e.Collect(src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nested")
}

func TestDefineBlockTemplatePropRefsSurviveSubstitution(t *testing.T) {
	src := `@variables {
	title: "Should Not Appear"
}
Define Card {
	Properties {
		title: String = "untitled"
	}
	Container {
		Text {
			text: $title
		}
	}
}
App { Card { title: "hi" } }
`
	out := process(t, src, nil)
	require.Contains(t, out, "text: $title")
	require.NotContains(t, out, "Should Not Appear")
}

func TestInvalidVariableNameIsAnError(t *testing.T) {
	src := "@variables {\n\t1bad: 1\n}\nApp { }"
	e := New("t.kry")
	err := e.Collect(src)
	require.Error(t, err)
}
