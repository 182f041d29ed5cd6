package style

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/parser"
)

func parseStyles(t *testing.T, src string) []*ir.StyleEntry {
	t.Helper()
	f, err := parser.Parse("t.kry", src)
	require.NoError(t, err)
	state := ir.NewCompilerState()
	r := New("t.kry", state)
	_, err = r.Resolve(f.Styles)
	require.NoError(t, err)
	out := make([]*ir.StyleEntry, len(state.Styles))
	for i := range state.Styles {
		out[i] = &state.Styles[i]
	}
	return out
}

func findStyle(entries []*ir.StyleEntry, name string) *ir.StyleEntry {
	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func findProp(props []ir.Property, id uint8) (ir.Property, bool) {
	for _, p := range props {
		if p.ID == id {
			return p, true
		}
	}
	return ir.Property{}, false
}

func TestResolveSingleStyleNoInheritance(t *testing.T) {
	entries := parseStyles(t, `style "base" { opacity: 1.0 }`)
	base := findStyle(entries, "base")
	require.NotNil(t, base)
	require.True(t, base.Resolved)
	p, ok := findProp(base.Properties, ir.PropOpacity)
	require.True(t, ok)
	require.Equal(t, ir.ValTypePercentage, p.ValueType)
}

func TestResolveInheritsBaseProperties(t *testing.T) {
	entries := parseStyles(t, `
style "base" { opacity: 1.0 }
style "child" { extends: ["base"] border_width: 2 }
`)
	child := findStyle(entries, "child")
	require.NotNil(t, child)
	_, hasOpacity := findProp(child.Properties, ir.PropOpacity)
	require.True(t, hasOpacity)
	_, hasBorder := findProp(child.Properties, ir.PropBorderWidth)
	require.True(t, hasBorder)
}

func TestOwnPropertyOverridesBase(t *testing.T) {
	entries := parseStyles(t, `
style "base" { border_width: 1 }
style "child" { extends: ["base"] border_width: 5 }
`)
	child := findStyle(entries, "child")
	p, ok := findProp(child.Properties, ir.PropBorderWidth)
	require.True(t, ok)
	require.Equal(t, []byte{5, 0}, p.Value)
}

func TestLaterExtendsEntryOverridesEarlier(t *testing.T) {
	entries := parseStyles(t, `
style "a" { border_width: 1 }
style "b" { border_width: 2 }
style "child" { extends: ["a", "b"] }
`)
	child := findStyle(entries, "child")
	p, ok := findProp(child.Properties, ir.PropBorderWidth)
	require.True(t, ok)
	require.Equal(t, []byte{2, 0}, p.Value)
}

func TestResolvedPropertiesMatchExpectedStructure(t *testing.T) {
	entries := parseStyles(t, `
style "base" { border_width: 1 opacity: 1.0 }
style "child" { extends: ["base"] border_width: 5 }
`)
	child := findStyle(entries, "child")
	want := []ir.Property{
		{ID: ir.PropBorderWidth, ValueType: ir.ValTypeShort, Value: []byte{5, 0}},
		{ID: ir.PropOpacity, ValueType: ir.ValTypePercentage, Value: []byte{100, 0}},
	}
	if diff := cmp.Diff(want, child.Properties); diff != "" {
		t.Errorf("resolved properties mismatch (-want +got):\n%s", diff)
	}
}

func TestPropertiesAreOrderedById(t *testing.T) {
	entries := parseStyles(t, `style "s" { opacity: 1.0 border_width: 1 background_color: #FF0000 }`)
	s := findStyle(entries, "s")
	for i := 1; i < len(s.Properties); i++ {
		require.Less(t, s.Properties[i-1].ID, s.Properties[i].ID)
	}
}

func TestUnknownExtendsTargetIsAnError(t *testing.T) {
	f, err := parser.Parse("t.kry", `style "a" { extends: ["ghost"] opacity: 1.0 }`)
	require.NoError(t, err)
	r := New("t.kry", ir.NewCompilerState())
	_, err = r.Resolve(f.Styles)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost")
}

func TestCyclicExtendsIsAnError(t *testing.T) {
	f, err := parser.Parse("t.kry", `
style "a" { extends: ["b"] opacity: 1.0 }
style "b" { extends: ["a"] opacity: 1.0 }
`)
	require.NoError(t, err)
	r := New("t.kry", ir.NewCompilerState())
	_, err = r.Resolve(f.Styles)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cyclic")
}

func TestPseudoStateResolvedIndependentlyOfBase(t *testing.T) {
	entries := parseStyles(t, `
style "base" {
	opacity: 1.0
	&:hover { opacity: 0.5 }
}
style "child" {
	extends: ["base"]
	&:hover { border_width: 3 }
}
`)
	child := findStyle(entries, "child")
	require.Len(t, child.States, 1)
	hoverSet := child.States[0]
	require.Equal(t, ir.StateHover, hoverSet.StateFlags)
	_, hasOpacity := findProp(hoverSet.Properties, ir.PropOpacity)
	require.True(t, hasOpacity)
	_, hasBorder := findProp(hoverSet.Properties, ir.PropBorderWidth)
	require.True(t, hasBorder)
}

func TestInvalidPropertyValueDuringResolutionIsAnError(t *testing.T) {
	f, err := parser.Parse("t.kry", `style "s" { background_color: not_a_color }`)
	require.NoError(t, err)
	r := New("t.kry", ir.NewCompilerState())
	_, err = r.Resolve(f.Styles)
	require.Error(t, err)
}

func TestResolveCachesAndDoesNotDuplicateStyleEntries(t *testing.T) {
	entries := parseStyles(t, `
style "base" { opacity: 1.0 }
style "a" { extends: ["base"] border_width: 1 }
style "b" { extends: ["base"] border_width: 2 }
`)
	require.Len(t, entries, 3)
	count := 0
	for _, e := range entries {
		if e.Name == "base" {
			count++
		}
	}
	require.Equal(t, 1, count)
}
