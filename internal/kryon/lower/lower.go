// Package lower implements P8 (spec §4.9): converting an ast.Property's
// parsed value into a typed ir.Property (or, for a name the property table
// doesn't know, an ir.CustomProperty), interning strings and resources into
// the shared CompilerState tables as it goes.
package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
	"github.com/waozixyz/kryonc/internal/kryon/transform"
)

// kind classifies how a property id's value is encoded, grounded on the
// original compiler's convert_ast_property_to_krb match arms (color/byte
// /short/enum/string categories) generalized to the full property table.
type kind int

const (
	kColor kind = iota
	kString
	kResource
	kShort
	kByte
	kPercentage
	kEdgeInsets
	kBool
	kEnumAlign
	kEnumDisplay
	kEnumFlexDirection
	kEnumPosition
	kEnumOverflow
	kFontWeight
	kTransform
)

var colorProps = map[uint8]bool{
	ir.PropBackgroundColor: true, ir.PropForegroundColor: true, ir.PropBorderColor: true,
	ir.PropBorderTopColor: true, ir.PropBorderRightColor: true, ir.PropBorderBottomColor: true,
	ir.PropBorderLeftColor: true, ir.PropOutlineColor: true,
}

var stringProps = map[uint8]bool{
	ir.PropTextContent: true, ir.PropWindowTitle: true, ir.PropFontFamily: true,
	ir.PropAuthor: true, ir.PropVersion: true, ir.PropInputType: true, ir.PropCursor: true,
}

var resourceProps = map[uint8]bool{
	ir.PropImageSource: true, ir.PropIcon: true,
}

var shortProps = map[uint8]bool{
	ir.PropWidth: true, ir.PropHeight: true, ir.PropWindowWidth: true, ir.PropWindowHeight: true,
	ir.PropFontSize: true, ir.PropMinWidth: true, ir.PropMinHeight: true, ir.PropMaxWidth: true,
	ir.PropMaxHeight: true, ir.PropGap: true, ir.PropLineHeight: true, ir.PropLetterSpacing: true,
	ir.PropWordSpacing: true, ir.PropBorderWidth: true, ir.PropBorderTopWidth: true,
	ir.PropBorderRightWidth: true, ir.PropBorderBottomWidth: true, ir.PropBorderLeftWidth: true,
	ir.PropOutlineWidth: true, ir.PropOutlineOffset: true, ir.PropZIndex: true,
	ir.PropLeft: true, ir.PropTop: true, ir.PropRight: true, ir.PropBottom: true,
	ir.PropGridColumnGap: true, ir.PropGridRowGap: true, ir.PropGridGap: true,
	ir.PropTextIndent: true,
}

var byteProps = map[uint8]bool{
	ir.PropBorderRadius: true, ir.PropBorderTopLeftRadius: true, ir.PropBorderTopRightRadius: true,
	ir.PropBorderBottomRightRadius: true, ir.PropBorderBottomLeftRadius: true, ir.PropOrder: true,
}

var percentageProps = map[uint8]bool{
	ir.PropOpacity: true, ir.PropScaleFactor: true, ir.PropFlexGrow: true, ir.PropFlexShrink: true,
	ir.PropAspectRatio: true,
}

var edgeInsetProps = map[uint8]bool{
	ir.PropPadding: true, ir.PropMargin: true, ir.PropInset: true,
}

var boolProps = map[uint8]bool{
	ir.PropResizable: true, ir.PropKeepAspect: true, ir.PropVisibility: true, ir.PropChecked: true,
}

var enumTables = map[uint8]map[string]uint8{
	ir.PropTextAlignment: {"start": 0, "center": 1, "end": 2, "justify": 3},
	ir.PropDisplay:       {"flex": 0, "grid": 1, "none": 2, "block": 3},
	ir.PropFlexDirection: {"row": 0, "column": 1, "row-reverse": 2, "column-reverse": 3},
	ir.PropAlignItems:    {"start": 0, "center": 1, "end": 2, "stretch": 3, "baseline": 4},
	ir.PropAlignSelf:     {"start": 0, "center": 1, "end": 2, "stretch": 3, "baseline": 4},
	ir.PropAlignContent:  {"start": 0, "center": 1, "end": 2, "stretch": 3, "space-between": 4, "space-around": 5},
	ir.PropJustifyContent: {"start": 0, "center": 1, "end": 2, "space-between": 3, "space-around": 4, "space-evenly": 5},
	ir.PropPosition:       {"static": 0, "relative": 1, "absolute": 2, "fixed": 3},
	ir.PropOverflow:       {"visible": 0, "hidden": 1, "scroll": 2, "auto": 3},
	ir.PropOverflowX:      {"visible": 0, "hidden": 1, "scroll": 2, "auto": 3},
	ir.PropOverflowY:      {"visible": 0, "hidden": 1, "scroll": 2, "auto": 3},
	ir.PropFlexWrap:       {"nowrap": 0, "wrap": 1, "wrap-reverse": 2},
	ir.PropBoxSizing:      {"content-box": 0, "border-box": 1},
}

func categoryOf(id uint8) (kind, bool) {
	switch {
	case colorProps[id]:
		return kColor, true
	case stringProps[id]:
		return kString, true
	case resourceProps[id]:
		return kResource, true
	case id == ir.PropFontWeight:
		return kFontWeight, true
	case id == ir.PropTransform:
		return kTransform, true
	case enumTables[id] != nil:
		return kEnumAlign, true
	case edgeInsetProps[id]:
		return kEdgeInsets, true
	case percentageProps[id]:
		return kPercentage, true
	case boolProps[id]:
		return kBool, true
	case byteProps[id]:
		return kByte, true
	case shortProps[id]:
		return kShort, true
	}
	return 0, false
}

// Converter converts ast property values into the typed wire form, sharing
// one CompilerState's string/resource tables across every call.
type Converter struct {
	state      *ir.CompilerState
	transforms *transform.Parser
}

func New(state *ir.CompilerState) *Converter {
	return &Converter{state: state, transforms: transform.New(state)}
}

// Convert turns one ast.Property into either a standard ir.Property or,
// when key isn't in the centralized property table or its id has no value
// encoding in categoryOf (e.g. shadow), an ir.CustomProperty
// (spec §4.5: unknown names are custom, not an error).
func (c *Converter) Convert(file string, key string, v ast.Value, line int) (*ir.Property, *ir.CustomProperty, error) {
	if ir.IsRejectedPropertyName(key) {
		return nil, nil, kerr.Semantic(file, line, "property %q is rejected, use 'shadow' instead", key)
	}
	id, known := ir.PropertyIDByName[key]
	if !known {
		return nil, c.customProperty(key, v), nil
	}
	cat, ok := categoryOf(id)
	if !ok {
		return nil, c.customProperty(key, v), nil
	}

	switch cat {
	case kColor:
		rgba, ok := parseColor(v.Raw)
		if !ok {
			return nil, nil, kerr.Semantic(file, line, "invalid color value %q for %q", v.Raw, key)
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeColor, Value: rgba[:]}, nil, nil

	case kString:
		idx, err := c.state.AddString(v.Raw)
		if err != nil {
			return nil, nil, err
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeString, Value: []byte{idx}}, nil, nil

	case kResource:
		idx, err := c.state.AddResource(ir.ResTypeImage, v.Raw)
		if err != nil {
			return nil, nil, err
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeResource, Value: []byte{idx}}, nil, nil

	case kShort:
		n, err := parseNumeric(v.Raw)
		if err != nil || n < 0 || n > 65535 {
			return nil, nil, kerr.Semantic(file, line, "invalid numeric value %q for %q", v.Raw, key)
		}
		b := []byte{byte(uint16(n)), byte(uint16(n) >> 8)}
		return &ir.Property{ID: id, ValueType: ir.ValTypeShort, Value: b}, nil, nil

	case kByte:
		n, err := parseNumeric(v.Raw)
		if err != nil || n < 0 || n > 255 {
			return nil, nil, kerr.Semantic(file, line, "invalid numeric value %q for %q", v.Raw, key)
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeByte, Value: []byte{byte(n)}}, nil, nil

	case kPercentage:
		f, err := parseNumeric(v.Raw)
		if err != nil || f < 0 {
			return nil, nil, kerr.Semantic(file, line, "invalid numeric value %q for %q", v.Raw, key)
		}
		fixed := uint16(f * 100)
		b := []byte{byte(fixed), byte(fixed >> 8)}
		return &ir.Property{ID: id, ValueType: ir.ValTypePercentage, Value: b}, nil, nil

	case kBool:
		b := byte(0)
		if v.Kind == ast.ValBool && v.Raw == "true" {
			b = 1
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeByte, Value: []byte{b}}, nil, nil

	case kEnumAlign:
		table := enumTables[id]
		enumVal, ok := table[strings.ToLower(v.Raw)]
		if !ok {
			return nil, nil, kerr.Semantic(file, line, "invalid value %q for %q: allowed %v", v.Raw, key, sortedKeys(table))
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeEnum, Value: []byte{enumVal}}, nil, nil

	case kFontWeight:
		enumVal, err := fontWeightEnum(v.Raw)
		if err != nil {
			return nil, nil, kerr.Semantic(file, line, "%v", err)
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeEnum, Value: []byte{enumVal}}, nil, nil

	case kEdgeInsets:
		insets, err := edgeInsetsOf(v)
		if err != nil {
			return nil, nil, kerr.Semantic(file, line, "%q: %v", key, err)
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeEdgeInsets, Value: insets[:]}, nil, nil

	case kTransform:
		idx, err := c.transforms.Parse(v.Raw)
		if err != nil {
			return nil, nil, kerr.Semantic(file, line, "invalid transform value %q: %v", v.Raw, err)
		}
		return &ir.Property{ID: id, ValueType: ir.ValTypeTransform, Value: []byte{idx}}, nil, nil
	}
	return nil, c.customProperty(key, v), nil
}

func (c *Converter) customProperty(key string, v ast.Value) *ir.CustomProperty {
	keyIdx, err := c.state.AddString(key)
	if err != nil {
		return nil
	}
	return &ir.CustomProperty{KeyIndex: keyIdx, ValueType: ir.ValTypeCustom, Value: []byte(rawOf(v))}
}

func rawOf(v ast.Value) string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%v", v.Kind)
}

// parseColor accepts "#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA" (spec §3
// "color (4×u8 RGBA)"), grounded on the teacher's utils.go parseColor.
func parseColor(raw string) ([4]byte, bool) {
	c := [4]byte{0, 0, 0, 255}
	if !strings.HasPrefix(raw, "#") {
		return c, false
	}
	hex := raw[1:]
	expand := func(c byte) byte {
		v, err := strconv.ParseUint(string([]byte{c, c}), 16, 8)
		if err != nil {
			return 0
		}
		return byte(v)
	}
	byteOf := func(s string) (byte, bool) {
		v, err := strconv.ParseUint(s, 16, 8)
		return byte(v), err == nil
	}
	isHex := func(s string) bool {
		_, err := strconv.ParseUint(s, 16, 8)
		return err == nil
	}
	switch len(hex) {
	case 3, 4:
		if !isHex(hex[0:1]) || !isHex(hex[1:2]) || !isHex(hex[2:3]) {
			return c, false
		}
		c[0] = expand(hex[0])
		c[1] = expand(hex[1])
		c[2] = expand(hex[2])
		if len(hex) == 4 {
			if !isHex(hex[3:4]) {
				return c, false
			}
			c[3] = expand(hex[3])
		}
		return c, true
	case 6, 8:
		r, ok1 := byteOf(hex[0:2])
		g, ok2 := byteOf(hex[2:4])
		b, ok3 := byteOf(hex[4:6])
		if !ok1 || !ok2 || !ok3 {
			return c, false
		}
		c[0], c[1], c[2] = r, g, b
		if len(hex) == 8 {
			a, ok4 := byteOf(hex[6:8])
			if !ok4 {
				return c, false
			}
			c[3] = a
		}
		return c, true
	}
	return c, false
}

// ParseNumeric exposes parseNumeric for callers outside the package (the
// component expander needs it for element-header geometry fields, which
// bypass Convert entirely).
func ParseNumeric(raw string) (float64, error) { return parseNumeric(raw) }

// parseNumeric extracts the leading numeric portion of a NUMBER or UNIT
// value's raw literal (e.g. "10px" -> 10, "0.5" -> 0.5).
func parseNumeric(raw string) (float64, error) {
	i := 0
	if i < len(raw) && (raw[i] == '-' || raw[i] == '+') {
		i++
	}
	for i < len(raw) && (raw[i] >= '0' && raw[i] <= '9' || raw[i] == '.') {
		i++
	}
	return strconv.ParseFloat(raw[:i], 64)
}

// edgeInsetsOf implements the CSS shorthand arity rule (1/2/4 values, spec
// §4.6 "edge-insets arity not 1/2/4"): 1 value applies to all sides, 2 to
// (vertical, horizontal), 4 to (top, right, bottom, left) in that order.
func edgeInsetsOf(v ast.Value) ([4]byte, error) {
	var nums []float64
	switch v.Kind {
	case ast.ValArray:
		for _, item := range v.Array {
			n, err := parseNumeric(item.Raw)
			if err != nil {
				return [4]byte{}, fmt.Errorf("invalid numeric value %q", item.Raw)
			}
			nums = append(nums, n)
		}
	case ast.ValNumber, ast.ValUnit:
		n, err := parseNumeric(v.Raw)
		if err != nil {
			return [4]byte{}, fmt.Errorf("invalid numeric value %q", v.Raw)
		}
		nums = []float64{n}
	case ast.ValString:
		for _, field := range strings.Fields(v.Raw) {
			n, err := parseNumeric(field)
			if err != nil {
				return [4]byte{}, fmt.Errorf("invalid numeric value %q", field)
			}
			nums = append(nums, n)
		}
	default:
		return [4]byte{}, fmt.Errorf("expected a number, unit, or array of 1/2/4 of them")
	}

	var top, right, bottom, left float64
	switch len(nums) {
	case 1:
		top, right, bottom, left = nums[0], nums[0], nums[0], nums[0]
	case 2:
		top, bottom = nums[0], nums[0]
		right, left = nums[1], nums[1]
	case 4:
		top, right, bottom, left = nums[0], nums[1], nums[2], nums[3]
	default:
		return [4]byte{}, fmt.Errorf("edge-insets must have 1, 2, or 4 values, got %d", len(nums))
	}
	for _, n := range []float64{top, right, bottom, left} {
		if n < 0 || n > 255 {
			return [4]byte{}, fmt.Errorf("edge-inset value %v out of byte range", n)
		}
	}
	return [4]byte{byte(top), byte(right), byte(bottom), byte(left)}, nil
}

// fontWeightEnum implements Open Question (d): numeric 100-900 (multiples
// of 100) map to (n/100)-1; "normal"/"bold" alias 400/800.
func fontWeightEnum(raw string) (byte, error) {
	switch strings.ToLower(raw) {
	case "normal":
		return 3, nil
	case "bold":
		return 7, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 100 || n > 900 || n%100 != 0 {
		return 0, fmt.Errorf("invalid font_weight %q: expected 100-900 in steps of 100, or normal/bold", raw)
	}
	return byte(n/100 - 1), nil
}

func sortedKeys(m map[string]uint8) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
