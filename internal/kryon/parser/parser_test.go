package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
)

func TestParseExplicitAppRoot(t *testing.T) {
	f, err := Parse("t.kry", `App { window_title: "X" Text { text: "Y" } }`)
	require.NoError(t, err)
	require.NotNil(t, f.Root)
	require.Equal(t, "App", f.Root.TypeName)
	require.Len(t, f.Root.Children, 1)
	require.Equal(t, "Text", f.Root.Children[0].TypeName)
}

func TestParseSynthesizesAppForLoneElement(t *testing.T) {
	f, err := Parse("t.kry", `Container { width: 10px }`)
	require.NoError(t, err)
	require.Equal(t, "App", f.Root.TypeName)
	require.Len(t, f.Root.Children, 1)
	require.Equal(t, "Container", f.Root.Children[0].TypeName)
	var sawTitle bool
	for _, p := range f.Root.Properties {
		if p.Key == "window_title" {
			sawTitle = true
		}
	}
	require.True(t, sawTitle)
}

func TestParseSynthesizesAppForMultipleTopLevelElements(t *testing.T) {
	f, err := Parse("t.kry", `Text { text: "a" } Text { text: "b" }`)
	require.NoError(t, err)
	require.Equal(t, "App", f.Root.TypeName)
	require.Len(t, f.Root.Children, 2)
}

func TestParseRejectsAppAlongsideSiblings(t *testing.T) {
	_, err := Parse("t.kry", `App { } Text { text: "a" }`)
	require.Error(t, err)
}

func TestParseStyleWithExtendsAndPseudo(t *testing.T) {
	f, err := Parse("t.kry", `
style "base" {
	background_color: #FF0000
}
style "hoverable" {
	extends: ["base"]
	opacity: 1.0
	&:hover {
		opacity: 0.5
	}
}
`)
	require.NoError(t, err)
	require.Len(t, f.Styles, 2)
	hoverable := f.Styles[1]
	require.Equal(t, []string{"base"}, hoverable.Extends)
	require.Len(t, hoverable.Pseudo, 1)
	require.Equal(t, "hover", hoverable.Pseudo[0].State)
	require.Equal(t, "opacity", hoverable.Pseudo[0].Properties[0].Key)
}

func TestParseComponentDefinition(t *testing.T) {
	f, err := Parse("t.kry", `
Define Card {
	Properties {
		title: String = "untitled"
	}
	Container {
		width: 100px
		Text {
			text: $title
		}
	}
}
App { Card { title: "hi" } }
`)
	require.NoError(t, err)
	require.Len(t, f.Components, 1)
	cd := f.Components[0]
	require.Equal(t, "Card", cd.Name)
	require.Len(t, cd.Properties, 1)
	require.Equal(t, "title", cd.Properties[0].Name)
	require.Equal(t, "String", cd.Properties[0].TypeHint)
	require.NotNil(t, cd.Properties[0].Default)
	require.Equal(t, "untitled", cd.Properties[0].Default.Raw)
	require.Equal(t, "Container", cd.Template.TypeName)
	textEl := cd.Template.Children[0]
	require.Equal(t, []string{"title"}, textEl.Properties[0].VarRefs)

	require.NotNil(t, f.Root)
	require.Equal(t, "Card", f.Root.Children[0].TypeName)
}

func TestParseComponentMissingTemplate(t *testing.T) {
	_, err := Parse("t.kry", `Define Empty { Properties { } }`)
	require.Error(t, err)
}

func TestParseInlineScript(t *testing.T) {
	f, err := Parse("t.kry", `
@script "lua" name="handlers" {
	function on_click(e)
		print("hi")
	end
}
App { }
`)
	require.NoError(t, err)
	require.Len(t, f.Scripts, 1)
	sn := f.Scripts[0]
	require.Equal(t, "lua", sn.Language)
	require.Equal(t, "handlers", sn.Name)
	require.Equal(t, "inline", sn.Mode)
	require.Contains(t, sn.Body, "function on_click(e)")
}

func TestParseExternalScript(t *testing.T) {
	f, err := Parse("t.kry", `
@script "javascript" from "handlers.js"
App { }
`)
	require.NoError(t, err)
	require.Len(t, f.Scripts, 1)
	require.Equal(t, "external", f.Scripts[0].Mode)
	require.Equal(t, "handlers.js", f.Scripts[0].From)
	require.Empty(t, f.Scripts[0].Body)
}

func TestParseFunctionSugar(t *testing.T) {
	f, err := Parse("t.kry", `
@function "lua" add(a, b) {
	return a + b
}
App { }
`)
	require.NoError(t, err)
	require.Len(t, f.Scripts, 1)
	sn := f.Scripts[0]
	require.True(t, sn.IsFunction)
	require.Equal(t, "add", sn.Name)
	require.Equal(t, []string{"a", "b"}, sn.Params)
	require.Contains(t, sn.Body, "function add(a, b)")
	require.Contains(t, sn.Body, "end")
}

func TestParseFontDeclaration(t *testing.T) {
	f, err := Parse("t.kry", `Font "Inter" "fonts/inter.ttf" App { }`)
	require.NoError(t, err)
	require.Len(t, f.Fonts, 1)
	require.Equal(t, "Inter", f.Fonts[0].Name)
	require.Equal(t, "fonts/inter.ttf", f.Fonts[0].Path)
}

func TestParseValueGrammar(t *testing.T) {
	f, err := Parse("t.kry", `App {
		width: 10px
		opacity: 0.5
		resizable: true
		background_color: #FF0000
		tags: ["a", "b"]
		shadow: { x: 1px, y: 2px }
	}`)
	require.NoError(t, err)
	props := f.Root.Properties
	byKey := map[string]ast.Value{}
	for _, p := range props {
		byKey[p.Key] = p.Value
	}
	require.Equal(t, ast.ValUnit, byKey["width"].Kind)
	require.Equal(t, ast.ValNumber, byKey["opacity"].Kind)
	require.Equal(t, ast.ValBool, byKey["resizable"].Kind)
	require.Equal(t, ast.ValColor, byKey["background_color"].Kind)
	require.Equal(t, ast.ValArray, byKey["tags"].Kind)
	require.Len(t, byKey["tags"].Array, 2)
	require.Equal(t, ast.ValObject, byKey["shadow"].Kind)
	require.Len(t, byKey["shadow"].Object, 2)
}

func TestParseTemplateRefsInStrings(t *testing.T) {
	f, err := Parse("t.kry", `App { Text { text: "Hello {{user_name}}" } }`)
	require.NoError(t, err)
	textEl := f.Root.Children[0]
	require.Equal(t, []string{"user_name"}, textEl.Properties[0].Value.TemplateRefs)
}

func TestParseUnterminatedElement(t *testing.T) {
	_, err := Parse("t.kry", `App { Text { text: "a" }`)
	require.Error(t, err)
}

func TestParseUnexpectedAfterIdentifier(t *testing.T) {
	_, err := Parse("t.kry", `App { width 10px }`)
	require.Error(t, err)
}
