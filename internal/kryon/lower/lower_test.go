package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
)

func strVal(s string) ast.Value    { return ast.Value{Kind: ast.ValString, Raw: s} }
func identVal(s string) ast.Value  { return ast.Value{Kind: ast.ValIdent, Raw: s} }
func numberVal(s string) ast.Value { return ast.Value{Kind: ast.ValNumber, Raw: s} }
func unitVal(s string) ast.Value   { return ast.Value{Kind: ast.ValUnit, Raw: s} }
func boolVal(s string) ast.Value   { return ast.Value{Kind: ast.ValBool, Raw: s} }
func arrayVal(items ...string) ast.Value {
	v := ast.Value{Kind: ast.ValArray}
	for _, it := range items {
		v.Array = append(v.Array, numberVal(it))
	}
	return v
}

func TestConvertColorLongForm(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, cp, err := c.Convert("t.kry", "background_color", strVal("#FF00FFAA"), 1)
	require.NoError(t, err)
	require.Nil(t, cp)
	require.Equal(t, ir.PropBackgroundColor, p.ID)
	require.Equal(t, ir.ValTypeColor, p.ValueType)
	require.Equal(t, []byte{0xFF, 0x00, 0xFF, 0xAA}, p.Value)
}

func TestConvertColorShortForm(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "background_color", strVal("#F0F"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0x00, 0xFF, 0xFF}, p.Value)
}

func TestConvertColorRejectsInvalidValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "background_color", strVal("not-a-color"), 1)
	require.Error(t, err)
}

func TestConvertStringInternsInState(t *testing.T) {
	state := ir.NewCompilerState()
	c := New(state)
	p, _, err := c.Convert("t.kry", "text", strVal("hello"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.PropTextContent, p.ID)
	require.Equal(t, ir.ValTypeString, p.ValueType)
	require.Len(t, p.Value, 1)
	require.Equal(t, "hello", state.Strings[p.Value[0]].Text)
}

func TestConvertResourceInternsInState(t *testing.T) {
	state := ir.NewCompilerState()
	c := New(state)
	p, _, err := c.Convert("t.kry", "image_source", strVal("assets/logo.png"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.PropImageSource, p.ID)
	require.Equal(t, ir.ValTypeResource, p.ValueType)
	require.Len(t, state.Resources, 1)
	require.Equal(t, ir.ResTypeImage, state.Resources[0].Type)
}

func TestConvertShortValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "width", unitVal("300px"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.PropWidth, p.ID)
	require.Equal(t, ir.ValTypeShort, p.ValueType)
	require.Equal(t, []byte{44, 1}, p.Value) // 300 = 0x012C little-endian
}

func TestConvertShortRejectsOutOfRange(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "width", numberVal("100000"), 1)
	require.Error(t, err)
}

func TestConvertByteValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "border_radius", numberVal("12"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.ValTypeByte, p.ValueType)
	require.Equal(t, []byte{12}, p.Value)
}

func TestConvertPercentageValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "opacity", numberVal("0.5"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.ValTypePercentage, p.ValueType)
	require.Equal(t, []byte{50, 0}, p.Value)
}

func TestConvertBoolValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "visibility", boolVal("true"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.ValTypeByte, p.ValueType)
	require.Equal(t, []byte{1}, p.Value)

	p, _, err = c.Convert("t.kry", "visibility", boolVal("false"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, p.Value)
}

func TestConvertEnumValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "flex_direction", identVal("column"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.ValTypeEnum, p.ValueType)
	require.Equal(t, []byte{1}, p.Value)
}

func TestConvertEnumRejectsUnknownKeyword(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "flex_direction", identVal("diagonal"), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "diagonal")
}

func TestConvertFontWeightNamedValues(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "font_weight", identVal("normal"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{3}, p.Value)

	p, _, err = c.Convert("t.kry", "font_weight", identVal("bold"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, p.Value)
}

func TestConvertFontWeightNumeric(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "font_weight", numberVal("900"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{8}, p.Value)
}

func TestConvertFontWeightRejectsInvalid(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "font_weight", numberVal("150"), 1)
	require.Error(t, err)
}

func TestConvertEdgeInsetsSingleValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "padding", unitVal("10px"), 1)
	require.NoError(t, err)
	require.Equal(t, ir.ValTypeEdgeInsets, p.ValueType)
	require.Equal(t, []byte{10, 10, 10, 10}, p.Value)
}

func TestConvertEdgeInsetsTwoValues(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "margin", arrayVal("4", "8"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 8, 4, 8}, p.Value)
}

func TestConvertEdgeInsetsFourValues(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "margin", arrayVal("1", "2", "3", "4"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, p.Value)
}

func TestConvertEdgeInsetsRejectsBadArity(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "margin", arrayVal("1", "2", "3"), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "1, 2, or 4")
}

func TestConvertEdgeInsetsQuotedSingleValue(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "padding", strVal("10"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 10, 10, 10}, p.Value)
}

func TestConvertEdgeInsetsQuotedTwoValues(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "padding", strVal("10 20"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 10, 20}, p.Value)
}

func TestConvertEdgeInsetsQuotedFourValues(t *testing.T) {
	c := New(ir.NewCompilerState())
	p, _, err := c.Convert("t.kry", "padding", strVal("10 20 30 40"), 1)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 30, 40}, p.Value)
}

func TestConvertEdgeInsetsQuotedRejectsBadArity(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "padding", strVal("1 2 3"), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "1, 2, or 4")
}

func TestConvertUnknownPropertyNameBecomesCustom(t *testing.T) {
	state := ir.NewCompilerState()
	c := New(state)
	p, cp, err := c.Convert("t.kry", "my_custom_flag", boolVal("true"), 1)
	require.NoError(t, err)
	require.Nil(t, p)
	require.NotNil(t, cp)
	require.Equal(t, ir.ValTypeCustom, cp.ValueType)
	require.Equal(t, "my_custom_flag", state.Strings[cp.KeyIndex].Text)
	require.Equal(t, []byte("true"), cp.Value)
}

func TestConvertRejectsBoxShadowPropertyName(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "box_shadow", strVal("#000000"), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "box_shadow")
}

func TestFontWeightEnumDirect(t *testing.T) {
	v, err := fontWeightEnum("400")
	require.NoError(t, err)
	require.Equal(t, byte(3), v)
}

func TestParseColorRejectsMissingHash(t *testing.T) {
	_, ok := parseColor("FF0000")
	require.False(t, ok)
}

func TestParseColorRejectsNonHexDigits(t *testing.T) {
	_, ok := parseColor("#GGG")
	require.False(t, ok)
}

func TestConvertTransformReferencesTransformTable(t *testing.T) {
	state := ir.NewCompilerState()
	c := New(state)
	p, cp, err := c.Convert("t.kry", "transform", strVal("translate(10px, 5px)"), 1)
	require.NoError(t, err)
	require.Nil(t, cp)
	require.Equal(t, ir.PropTransform, p.ID)
	require.Equal(t, ir.ValTypeTransform, p.ValueType)
	require.Len(t, p.Value, 1)
	require.Equal(t, p.Value[0], uint8(0))
	require.Len(t, state.Transforms, 1)
}

func TestConvertTransformInvalidValueIsAnError(t *testing.T) {
	c := New(ir.NewCompilerState())
	_, _, err := c.Convert("t.kry", "transform", strVal("spin(5deg)"), 1)
	require.Error(t, err)
}
