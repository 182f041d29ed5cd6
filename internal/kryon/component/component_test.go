package component

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/parser"
)

func expandFile(t *testing.T, src string, styleIDs map[string]uint8) (*ir.CompilerState, error) {
	t.Helper()
	f, err := parser.Parse("t.kry", src)
	require.NoError(t, err)
	state := ir.NewCompilerState()
	if styleIDs == nil {
		styleIDs = map[string]uint8{}
	}
	e := New("t.kry", state, styleIDs)
	return state, e.Expand(f)
}

func TestExpandStandardTreeNoComponents(t *testing.T) {
	state, err := expandFile(t, `App { Container { width: 10px Text { text: "hi" } } }`, nil)
	require.NoError(t, err)
	require.Equal(t, 0, state.MainRootIndex)
	root := state.Elements[0]
	require.Equal(t, ir.ElemTypeApp, root.Type)
	require.Len(t, root.Children, 1)
	container := state.Elements[root.Children[0]]
	require.Equal(t, ir.ElemTypeContainer, container.Type)
	require.Equal(t, uint16(10), container.Width)
	text := state.Elements[container.Children[0]]
	require.Equal(t, ir.ElemTypeText, text.Type)
}

func TestExpandComponentUsesDefault(t *testing.T) {
	state, err := expandFile(t, `
Define Card {
	Properties { title: String = "untitled" }
	Container {
		Text { text: $title }
	}
}
App { Card { } }
`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	require.Len(t, root.Children, 1)
	container := state.Elements[root.Children[0]]
	require.Equal(t, ir.ElemTypeContainer, container.Type)
	text := state.Elements[container.Children[0]]
	idx := text.Properties[0].Value[0]
	s, ok := state.StringAt(idx)
	require.True(t, ok)
	require.Equal(t, "untitled", s)
}

func TestExpandComponentUsesInstanceOverride(t *testing.T) {
	state, err := expandFile(t, `
Define Card {
	Properties { title: String = "untitled" }
	Container {
		Text { text: $title }
	}
}
App { Card { title: "hello" } }
`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	container := state.Elements[root.Children[0]]
	text := state.Elements[container.Children[0]]
	idx := text.Properties[0].Value[0]
	s, _ := state.StringAt(idx)
	require.Equal(t, "hello", s)
}

func TestExpandComponentMissingRequiredPropertyIsAnError(t *testing.T) {
	_, err := expandFile(t, `
Define Card {
	Properties { title: String }
	Container { Text { text: $title } }
}
App { Card { } }
`, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "title")
}

func TestExpandComponentInstanceOverridesCloneRootProperty(t *testing.T) {
	state, err := expandFile(t, `
Define Card {
	Properties { title: String = "untitled" }
	Container { width: 50px Text { text: $title } }
}
App { Card { width: 200px } }
`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	container := state.Elements[root.Children[0]]
	require.Equal(t, uint16(200), container.Width)
}

func TestExpandComponentInstanceChildrenAppendAfterTemplateChildren(t *testing.T) {
	state, err := expandFile(t, `
Define Card {
	Properties { title: String = "untitled" }
	Container { Text { text: $title } }
}
App { Card { Text { text: "extra" } } }
`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	container := state.Elements[root.Children[0]]
	require.Len(t, container.Children, 2)
	first := state.Elements[container.Children[0]]
	second := state.Elements[container.Children[1]]
	firstText, _ := state.StringAt(first.Properties[0].Value[0])
	secondText, _ := state.StringAt(second.Properties[0].Value[0])
	require.Equal(t, "untitled", firstText)
	require.Equal(t, "extra", secondText)
}

func TestExpandNestedComponentUsage(t *testing.T) {
	state, err := expandFile(t, `
Define Label {
	Properties { text: String = "label" }
	Text { text: $text }
}
Define Card {
	Properties { title: String = "untitled" }
	Container { Label { text: $title } }
}
App { Card { title: "nested" } }
`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	container := state.Elements[root.Children[0]]
	label := state.Elements[container.Children[0]]
	require.Equal(t, ir.ElemTypeText, label.Type)
	s, _ := state.StringAt(label.Properties[0].Value[0])
	require.Equal(t, "nested", s)
}

func TestExpandSelfIncludingComponentIsAnError(t *testing.T) {
	_, err := expandFile(t, `
Define Loop {
	Properties { }
	Container { Loop { } }
}
App { Loop { } }
`, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Loop")
}

func TestExpandElementHeaderFields(t *testing.T) {
	state, err := expandFile(t, `App { Container { id: "main" pos_x: 5px pos_y: 6px width: 7px height: 8px checked: true } }`, map[string]uint8{"box": 1})
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	c := state.Elements[root.Children[0]]
	idName, _ := state.StringAt(c.IDStringIndex)
	require.Equal(t, "main", idName)
	require.Equal(t, uint16(5), c.PosX)
	require.Equal(t, uint16(6), c.PosY)
	require.Equal(t, uint16(7), c.Width)
	require.Equal(t, uint16(8), c.Height)
	require.Equal(t, uint8(1), c.Checked)
}

func TestExpandElementStyleFieldResolvesStyleID(t *testing.T) {
	state, err := expandFile(t, `App { Container { style: "box" } }`, map[string]uint8{"box": 3})
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	c := state.Elements[root.Children[0]]
	require.Equal(t, uint8(3), c.StyleID)
}

func TestExpandElementUnknownStyleIsAnError(t *testing.T) {
	_, err := expandFile(t, `App { Container { style: "ghost" } }`, map[string]uint8{})
	require.Error(t, err)
}

func TestExpandElementEventProperty(t *testing.T) {
	state, err := expandFile(t, `App { Button { onClick: "handleClick" } }`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	btn := state.Elements[root.Children[0]]
	require.Len(t, btn.Events, 1)
	require.Equal(t, ir.EventTypeClick, btn.Events[0].EventType)
	name, _ := state.StringAt(btn.Events[0].CallbackID)
	require.Equal(t, "handleClick", name)
}

func TestExpandElementPseudoStateProperty(t *testing.T) {
	state, err := expandFile(t, `App { Button { &:hover { opacity: 0.5 } } }`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	btn := state.Elements[root.Children[0]]
	require.Len(t, btn.States, 1)
	require.Equal(t, ir.StateHover, btn.States[0].StateFlags)
	require.Equal(t, ir.PropOpacity, btn.States[0].Properties[0].ID)
}

func TestExpandElementCustomProperty(t *testing.T) {
	state, err := expandFile(t, `App { Container { my_flag: true } }`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	c := state.Elements[root.Children[0]]
	require.Len(t, c.CustomProperties, 1)
	key, _ := state.StringAt(c.CustomProperties[0].KeyIndex)
	require.Equal(t, "my_flag", key)
}

func TestExpandComponentDefinitionRegistersDefinition(t *testing.T) {
	state, err := expandFile(t, `
Define Card {
	Properties { title: String = "untitled" }
	Container { Text { text: $title } }
}
App { }
`, nil)
	require.NoError(t, err)
	require.Len(t, state.ComponentDefs, 1)
	def := state.ComponentDefs[0]
	require.Equal(t, "Card", def.Name)
	require.Len(t, def.Properties, 1)
	require.True(t, def.Properties[0].HasDefault)
	require.Equal(t, "untitled", def.Properties[0].DefaultValueStr)
	tmplRoot := state.Elements[def.TemplateRootIndex]
	require.True(t, tmplRoot.IsTemplateElement)
}

func TestExpandLayoutByteFromFlexProperties(t *testing.T) {
	state, err := expandFile(t, `App { Container { flex_direction: column align_items: center position: absolute } }`, nil)
	require.NoError(t, err)
	root := state.Elements[state.MainRootIndex]
	c := state.Elements[root.Children[0]]
	require.NotZero(t, c.Layout&ir.LayoutDirectionMask)
	require.NotZero(t, c.Layout&ir.LayoutAlignMask)
	require.NotZero(t, c.Layout&ir.LayoutAbsoluteBit)
}
