// Package transform implements the (added) part of P8 that parses a
// `transform:` property's raw string value — e.g.
// "translate(10px, 5px) rotate(15deg)" — into the dedicated Transform
// section records (spec §4.10 item 9, §6 emission order item 11).
//
// The original compiler treats `transform` as an opaque property id with no
// decomposition (core/properties.rs only lists Transform = 0x17 as a plain
// PropertyId); its codegen/size_calculator confirm the on-wire record shape
// (a 1-byte count header followed by sub-records) but not the function-call
// grammar itself, so the grammar below is this compiler's own design,
// following the same numeric-literal conventions internal/kryon/lower uses
// elsewhere (a leading numeric literal with an optional unit suffix).
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/waozixyz/kryonc/internal/kryon/ir"
)

// callPattern matches one function-call term, e.g. "rotate(15deg)".
var callPattern = regexp.MustCompile(`([a-zA-Z]+)\s*\(([^)]*)\)`)

// axisRule gives, for one transform function name (see functionRules), its
// op kind and which of the call's (x, y) argument slots it fills. A
// single-axis function (e.g. translateX) encodes only its own axis's value.
// A two-axis function called with one argument fills y with 0 for
// translate/skew and with the same value for a uniform scale.
type axisRule struct {
	kind uint8
	x, y bool // whether this function supplies the x / y argument
}

var functionRules = map[string]axisRule{
	"translate":  {ir.TransformOpTranslate, true, true},
	"translatex": {ir.TransformOpTranslate, true, false},
	"translatey": {ir.TransformOpTranslate, false, true},
	"scale":      {ir.TransformOpScale, true, true},
	"scalex":     {ir.TransformOpScale, true, false},
	"scaley":     {ir.TransformOpScale, false, true},
	"skew":       {ir.TransformOpSkew, true, true},
	"skewx":      {ir.TransformOpSkew, true, false},
	"skewy":      {ir.TransformOpSkew, false, true},
	"rotate":     {ir.TransformOpRotate, true, false},
}

// Parser parses `transform:` values and interns the results into a shared
// CompilerState's Transform table.
type Parser struct {
	state *ir.CompilerState
}

func New(state *ir.CompilerState) *Parser {
	return &Parser{state: state}
}

// Parse converts raw (the full `transform:` string value) into a sequence
// of ir.TransformOp records and interns them, returning the table index a
// property's ValTypeTransform payload should reference.
func (p *Parser) Parse(raw string) (uint8, error) {
	calls := callPattern.FindAllStringSubmatch(raw, -1)
	if len(calls) == 0 {
		return 0, fmt.Errorf("transform value %q has no recognized function calls", raw)
	}

	ops := make([]ir.TransformOp, 0, len(calls))
	for _, m := range calls {
		name := strings.ToLower(strings.TrimSpace(m[1]))
		rule, ok := functionRules[name]
		if !ok {
			return 0, fmt.Errorf("unknown transform function %q", m[1])
		}
		op, err := buildOp(rule, m[2])
		if err != nil {
			return 0, fmt.Errorf("transform %q: %v", m[1], err)
		}
		ops = append(ops, op)
	}

	return p.state.AddTransform(raw, ops)
}

// buildOp parses a call's comma-separated argument list and encodes it as
// the op's payload: one signed, fixed-point (x100) int16 per axis, little
// endian, x first then y when the function takes two axes.
func buildOp(rule axisRule, argList string) (ir.TransformOp, error) {
	var args []float64
	for _, part := range strings.Split(argList, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := parseNumeric(part)
		if err != nil {
			return ir.TransformOp{}, fmt.Errorf("invalid argument %q", part)
		}
		args = append(args, n)
	}
	if len(args) == 0 {
		return ir.TransformOp{}, fmt.Errorf("expected at least one argument")
	}

	var x, y float64
	switch {
	case rule.x && rule.y:
		x = args[0]
		if len(args) > 1 {
			y = args[1]
		} else if rule.kind == ir.TransformOpScale {
			y = args[0] // uniform scale(s) applies to both axes
		}
	case rule.x:
		x = args[0]
	case rule.y:
		y = args[0]
	}

	payload := make([]byte, 0, 4)
	switch {
	case rule.x && rule.y:
		payload = appendFixed(payload, x)
		payload = appendFixed(payload, y)
	case rule.x:
		payload = appendFixed(payload, x)
	default:
		payload = appendFixed(payload, y)
	}
	return ir.TransformOp{Kind: rule.kind, Value: payload}, nil
}

func appendFixed(b []byte, v float64) []byte {
	fixed := int16(v * 100)
	return append(b, byte(fixed), byte(uint16(fixed)>>8))
}

// parseNumeric extracts the leading numeric portion of an argument literal
// (e.g. "10px" -> 10, "-5deg" -> -5), matching the convention
// internal/kryon/lower uses for the same kind of unit-suffixed literal.
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
