// Package ast defines the parse tree produced by internal/kryon/parser and
// consumed by the semantic, style, component, script, and lower phases.
package ast

import "github.com/waozixyz/kryonc/internal/kryon/token"

// File is the root of one parsed UIDL unit (spec §4.3: "file root holding
// directives, styles, fonts, components, scripts, and an optional root
// element").
type File struct {
	Scripts    []*ScriptNode
	Styles     []*StyleBlock
	Fonts      []*FontDecl
	Components []*ComponentDef
	Root       *Element // nil if the source had no elements at all
}

// ValueKind classifies a parsed property value (spec §4.3 "Value grammar").
type ValueKind int

const (
	ValString ValueKind = iota
	ValNumber
	ValUnit
	ValBool
	ValColor
	ValIdent
	ValObject
	ValArray
)

// Value is a parsed property value. Exactly one of Raw/Object/Array is
// meaningful, selected by Kind.
type Value struct {
	Kind   ValueKind
	Raw    string // String/Number/Unit/Bool/Color/Ident literal text
	Object []KeyValue
	Array  []Value

	// TemplateRefs holds the `{{name}}` runtime-binding markers found inside
	// Raw, left unresolved for the component/runtime binding table (spec
	// §4.4 "Template variables used inside {{...}} markers").
	TemplateRefs []string

	Pos token.Pos
}

// KeyValue is one entry of an object literal (`{ key: value, ... }`).
type KeyValue struct {
	Key   string
	Value Value
}

// Property is a single `key: value` pair inside an element, style, or
// component-properties block. VarRefs records `$name` references found in a
// string-valued Raw, for the variable expander/component binder (spec §4.3
// "Properties can carry template references ($name)").
type Property struct {
	Key    string
	Value  Value
	VarRefs []string
	Pos    token.Pos
}

// PseudoBlock is a `&:state { ... }` sub-block inside an element or style.
type PseudoBlock struct {
	State      string
	Properties []Property
	Pos        token.Pos
}

// Element is one node of the element tree — either a standard element type
// (spec keyword list) or a usage of a `Define`d component, disambiguated
// later by semantic analysis (spec §4.5).
type Element struct {
	TypeName   string
	Properties []Property
	Pseudo     []PseudoBlock
	Children   []*Element
	Pos        token.Pos
}

// StyleBlock is a parsed `style "name" { ... }` block (spec §4.3).
type StyleBlock struct {
	Name       string
	Extends    []string
	Properties []Property
	Pseudo     []PseudoBlock
	Pos        token.Pos
}

// FontDecl is a parsed font declaration.
type FontDecl struct {
	Name string
	Path string
	Pos  token.Pos
}

// ComponentPropDecl is one declared property inside a component's
// `Properties { ... }` block.
type ComponentPropDecl struct {
	Name      string
	TypeHint  string // "String", "Int", "Float", "Bool", "Color", ... as written in source
	Default   *Value
	Pos       token.Pos
}

// ComponentDef is a parsed `Define Name { Properties { ... } <element> }`
// block (spec §4.3, §4.7).
type ComponentDef struct {
	Name       string
	Properties []ComponentPropDecl
	Template   *Element
	Pos        token.Pos
}

// ScriptNode is a parsed `@script { ... }` or `@function name(...) { ... }`
// block (spec §4.3, §4.8). IsFunction records which surface form produced it
// so diagnostics can refer to the one the author wrote.
type ScriptNode struct {
	Name       string
	Language   string
	Mode       string // "inline" (default) or "external"
	From       string // path, when an external "from" attribute was given
	Params     []string
	Body       string
	IsFunction bool
	Pos        token.Pos
}
