// Package component implements P6 (spec §4.7): expanding every component
// usage in the element tree into a concrete clone of its definition's
// template, with `$propname` references substituted by the usage's bound
// property values.
//
// This is a deliberate divergence from the teacher compiler, which never
// clones a template at compile time: it leaves a placeholder element
// carrying a "_componentName" custom property and defers instantiation to a
// runtime engine. spec §4.7 is unambiguous about compile-time expansion
// ("clone the template subtree ... substitute $propname occurrences ...
// merge any instance-level property overrides"), so kryonc clones here
// instead. See DESIGN.md for the full writeup.
package component

import (
	"regexp"
	"strings"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
	"github.com/waozixyz/kryonc/internal/kryon/lower"
)

// Expander walks a parsed file's element tree, building the final
// ir.Element slice: standard elements are converted in place, component
// usages are expanded (recursively, so a component's own template may use
// other components) into cloned, bound subtrees.
type Expander struct {
	file     string
	state    *ir.CompilerState
	lower    *lower.Converter
	styleIDs map[string]uint8
	defs     map[string]*ast.ComponentDef
}

func New(file string, state *ir.CompilerState, styleIDs map[string]uint8) *Expander {
	return &Expander{
		file:     file,
		state:    state,
		lower:    lower.New(state),
		styleIDs: styleIDs,
		defs:     map[string]*ast.ComponentDef{},
	}
}

// Expand builds every ir.ComponentDefinition in f.Components and the main
// element tree rooted at f.Root, populating e.state.ComponentDefs,
// e.state.Elements, and e.state.MainRootIndex.
func (e *Expander) Expand(f *ast.File) error {
	for _, cd := range f.Components {
		e.defs[cd.Name] = cd
	}
	for _, cd := range f.Components {
		if err := e.buildDefinition(cd); err != nil {
			return err
		}
	}
	if f.Root == nil {
		return nil
	}
	idx, err := e.buildTree(f.Root, -1, false, map[string]bool{})
	if err != nil {
		return err
	}
	e.state.MainRootIndex = idx
	return nil
}

// buildDefinition builds a component's canonical template once, substituting
// $propname references with the property's declared default (spec §4.7:
// there is no instance context for a definition's own template). A
// referenced property with no default is left unresolved here and will
// surface as an ordinary lowering error against the literal "$name" text,
// since no concrete value exists to check it against outside a usage.
func (e *Expander) buildDefinition(cd *ast.ComponentDef) error {
	if cd.Template == nil {
		return kerr.Component(e.file, cd.Pos.Line, "component %q has no template element", cd.Name)
	}
	bindings := defaultBindings(cd)
	clone := cloneWithBindings(cd.Template, bindings)

	rootIdx, err := e.buildTree(clone, -1, true, map[string]bool{cd.Name: true})
	if err != nil {
		return err
	}

	nameIdx, err := e.state.AddString(cd.Name)
	if err != nil {
		return err
	}

	props := make([]ir.ComponentPropertyDef, 0, len(cd.Properties))
	for _, pd := range cd.Properties {
		pNameIdx, err := e.state.AddString(pd.Name)
		if err != nil {
			return err
		}
		entry := ir.ComponentPropertyDef{
			Name:          pd.Name,
			NameIndex:     pNameIdx,
			ValueTypeHint: valueTypeHint(pd.TypeHint),
		}
		if pd.Default != nil {
			entry.HasDefault = true
			entry.DefaultValueStr = pd.Default.Raw
		}
		props = append(props, entry)
	}

	e.state.ComponentDefs = append(e.state.ComponentDefs, ir.ComponentDefinition{
		Name:              cd.Name,
		NameIndex:         nameIdx,
		Properties:        props,
		TemplateRootIndex: rootIdx,
	})
	return nil
}

// valueTypeHint maps a component property's declared type-hint keyword to a
// value-type tag, defaulting to string for an unrecognized or absent hint.
func valueTypeHint(hint string) uint8 {
	switch strings.ToLower(hint) {
	case "int", "float", "number":
		return ir.ValTypeShort
	case "bool", "boolean":
		return ir.ValTypeByte
	case "color":
		return ir.ValTypeColor
	default:
		return ir.ValTypeString
	}
}

// defaultBindings returns the subset of a component's declared properties
// that carry a default value, keyed by name.
func defaultBindings(cd *ast.ComponentDef) map[string]ast.Value {
	out := map[string]ast.Value{}
	for _, pd := range cd.Properties {
		if pd.Default != nil {
			out[pd.Name] = *pd.Default
		}
	}
	return out
}

// buildTree converts el into ir.Element entries, dispatching to expandUsage
// when el.TypeName names a known component. expanding tracks components
// currently being expanded along this path, for self-inclusion cycle
// detection (spec I6).
func (e *Expander) buildTree(el *ast.Element, parentIdx int, isTemplate bool, expanding map[string]bool) (int, error) {
	if cd, ok := e.defs[el.TypeName]; ok {
		return e.expandUsage(el, cd, parentIdx, isTemplate, expanding)
	}
	return e.buildStandardElement(el, parentIdx, isTemplate, expanding)
}

// buildStandardElement converts one non-component element node, reserving
// its slot in e.state.Elements before recursing into children so a slice
// growth during a child's construction never invalidates an in-flight
// pointer into the parent's slot.
func (e *Expander) buildStandardElement(el *ast.Element, parentIdx int, isTemplate bool, expanding map[string]bool) (int, error) {
	typeTag, known := ir.ElementTypeByName[el.TypeName]
	if !known {
		return 0, kerr.Component(e.file, el.Pos.Line, "unknown element type %q", el.TypeName)
	}

	selfIdx := len(e.state.Elements)
	e.state.Elements = append(e.state.Elements, ir.Element{})

	hf, props, customProps, events, err := e.convertProperties(el.Properties, true)
	if err != nil {
		return 0, err
	}
	states, err := e.convertStates(el.Pseudo)
	if err != nil {
		return 0, err
	}

	children := make([]int, 0, len(el.Children))
	for _, child := range el.Children {
		childIdx, err := e.buildTree(child, selfIdx, isTemplate, expanding)
		if err != nil {
			return 0, err
		}
		children = append(children, childIdx)
	}

	e.state.Elements[selfIdx] = ir.Element{
		Type:              typeTag,
		IDStringIndex:     hf.idIdx,
		PosX:              hf.posX,
		PosY:              hf.posY,
		Width:             hf.width,
		Height:            hf.height,
		Layout:            computeLayout(el.Properties),
		StyleID:           hf.styleID,
		Checked:           hf.checked,
		Properties:        props,
		CustomProperties:  customProps,
		States:            states,
		Events:            events,
		Children:          children,
		ParentIndex:       parentIdx,
		SelfIndex:         selfIdx,
		IsTemplateElement: isTemplate,
		SourceFile:        e.file,
		SourceLine:        el.Pos.Line,
		SourceName:        el.TypeName,
	}
	return selfIdx, nil
}

// expandUsage clones cd's template, binds $propname references to either
// the usage's own property values or the component's declared defaults,
// merges any remaining instance-level properties onto the clone's root, and
// builds the resulting subtree in place of the usage element (spec §4.7).
func (e *Expander) expandUsage(usage *ast.Element, cd *ast.ComponentDef, parentIdx int, isTemplate bool, expanding map[string]bool) (int, error) {
	if expanding[cd.Name] {
		return 0, kerr.Component(e.file, usage.Pos.Line, "component %q recursively includes itself", cd.Name)
	}
	if cd.Template == nil {
		return 0, kerr.Component(e.file, cd.Pos.Line, "component %q has no template element", cd.Name)
	}

	declared := make(map[string]bool, len(cd.Properties))
	bindings := make(map[string]ast.Value, len(cd.Properties))
	for _, pd := range cd.Properties {
		declared[pd.Name] = true
		if v, ok := instanceValue(usage.Properties, pd.Name); ok {
			bindings[pd.Name] = v
			continue
		}
		if pd.Default != nil {
			bindings[pd.Name] = *pd.Default
			continue
		}
		return 0, kerr.Component(e.file, usage.Pos.Line, "usage of component %q is missing required property %q", cd.Name, pd.Name)
	}

	clone := cloneWithBindings(cd.Template, bindings)
	clone.Pos = usage.Pos
	clone.Children = append(append([]*ast.Element(nil), clone.Children...), usage.Children...)
	clone.Properties = mergeOverrides(clone.Properties, usage.Properties, declared)

	next := make(map[string]bool, len(expanding)+1)
	for k := range expanding {
		next[k] = true
	}
	next[cd.Name] = true
	return e.buildTree(clone, parentIdx, isTemplate, next)
}

// instanceValue returns the last property named name in props (later
// entries win, matching how a standard element's own duplicate keys would
// resolve during lowering).
func instanceValue(props []ast.Property, name string) (ast.Value, bool) {
	var (
		found bool
		v     ast.Value
	)
	for _, p := range props {
		if p.Key == name {
			v, found = p.Value, true
		}
	}
	return v, found
}

// mergeOverrides applies usage's properties that are not consumed as
// component-property bindings onto base (the clone root's own properties),
// overwriting a same-key entry or appending a new one, in usage order.
func mergeOverrides(base []ast.Property, usage []ast.Property, declared map[string]bool) []ast.Property {
	out := append([]ast.Property(nil), base...)
	for _, ov := range usage {
		if declared[ov.Key] {
			continue
		}
		replaced := false
		for i, b := range out {
			if b.Key == ov.Key {
				out[i] = ov
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, ov)
		}
	}
	return out
}

// cloneWithBindings deep-copies el and every descendant, substituting
// $propname references in property values along the way (spec §4.7
// "substitute $propname occurrences in the clone's property values").
func cloneWithBindings(el *ast.Element, bindings map[string]ast.Value) *ast.Element {
	out := &ast.Element{TypeName: el.TypeName, Pos: el.Pos}

	out.Properties = make([]ast.Property, len(el.Properties))
	for i, p := range el.Properties {
		out.Properties[i] = ast.Property{Key: p.Key, Value: substituteValue(p.Value, bindings), Pos: p.Pos}
	}

	out.Pseudo = make([]ast.PseudoBlock, len(el.Pseudo))
	for i, pb := range el.Pseudo {
		props := make([]ast.Property, len(pb.Properties))
		for j, p := range pb.Properties {
			props[j] = ast.Property{Key: p.Key, Value: substituteValue(p.Value, bindings), Pos: p.Pos}
		}
		out.Pseudo[i] = ast.PseudoBlock{State: pb.State, Properties: props, Pos: pb.Pos}
	}

	out.Children = make([]*ast.Element, len(el.Children))
	for i, c := range el.Children {
		out.Children[i] = cloneWithBindings(c, bindings)
	}
	return out
}

// substituteValue replaces $propname references inside v with the bound
// value. A value that IS a bare $propname reference is replaced wholesale
// (adopting the bound value's own Kind), so a numeric or color default
// lowers correctly; a $propname embedded inside a larger string is replaced
// textually.
func substituteValue(v ast.Value, bindings map[string]ast.Value) ast.Value {
	switch v.Kind {
	case ast.ValIdent:
		if name, ok := wholeVarRef(v.Raw); ok {
			if bound, ok := bindings[name]; ok {
				return bound
			}
		}
		return v
	case ast.ValString:
		v.Raw = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`).ReplaceAllStringFunc(v.Raw, func(m string) string {
			if bound, ok := bindings[m[1:]]; ok {
				return bound.Raw
			}
			return m
		})
		return v
	case ast.ValObject:
		out := make([]ast.KeyValue, len(v.Object))
		for i, kv := range v.Object {
			out[i] = ast.KeyValue{Key: kv.Key, Value: substituteValue(kv.Value, bindings)}
		}
		v.Object = out
		return v
	case ast.ValArray:
		out := make([]ast.Value, len(v.Array))
		for i, item := range v.Array {
			out[i] = substituteValue(item, bindings)
		}
		v.Array = out
		return v
	default:
		return v
	}
}

func wholeVarRef(raw string) (string, bool) {
	if len(raw) > 1 && raw[0] == '$' {
		return raw[1:], true
	}
	return "", false
}

// headerFields collects the element-header-only property values found on
// one element (spec §4.9 "Element-header-only keys"), before they're
// written into the final ir.Element.
type headerFields struct {
	idIdx   uint8
	posX    uint16
	posY    uint16
	width   uint16
	height  uint16
	styleID uint8
	checked uint8
}

// convertProperties converts one element's properties into header fields,
// events, standard properties, and custom properties. headerEligible is
// false when converting a pseudo-state block, where header-only keys have
// no header to write into and instead fall through to lower.Convert like
// any other property (spec §4.6's StatePropertySet carries only typed
// properties, never header fields).
func (e *Expander) convertProperties(props []ast.Property, headerEligible bool) (headerFields, []ir.Property, []ir.CustomProperty, []ir.Event, error) {
	var (
		hf          headerFields
		stdProps    []ir.Property
		customProps []ir.CustomProperty
		events      []ir.Event
	)
	for _, p := range props {
		if headerEligible && ir.ElementHeaderOnlyProperties[p.Key] {
			if err := e.applyHeaderField(p, &hf); err != nil {
				return hf, nil, nil, nil, err
			}
			continue
		}
		if evType, ok := ir.EventTypeByName[p.Key]; ok {
			name, ok := stringLiteral(p.Value)
			if !ok {
				return hf, nil, nil, nil, kerr.Component(e.file, p.Pos.Line, "event handler %q must be a string naming a function", p.Key)
			}
			cbIdx, err := e.state.AddString(name)
			if err != nil {
				return hf, nil, nil, nil, err
			}
			events = append(events, ir.Event{EventType: evType, CallbackID: cbIdx})
			continue
		}
		std, custom, err := e.lower.Convert(e.file, p.Key, p.Value, p.Pos.Line)
		if err != nil {
			return hf, nil, nil, nil, err
		}
		if std != nil {
			stdProps = append(stdProps, *std)
		} else if custom != nil {
			customProps = append(customProps, *custom)
		}
	}
	return hf, stdProps, customProps, events, nil
}

func (e *Expander) applyHeaderField(p ast.Property, hf *headerFields) error {
	switch p.Key {
	case "id":
		s, ok := stringLiteral(p.Value)
		if !ok {
			return kerr.Component(e.file, p.Pos.Line, "id must be a string")
		}
		idx, err := e.state.AddString(s)
		if err != nil {
			return err
		}
		hf.idIdx = idx
	case "pos_x", "pos_y", "width", "height":
		n, err := lower.ParseNumeric(p.Value.Raw)
		if err != nil || n < 0 || n > 65535 {
			return kerr.Component(e.file, p.Pos.Line, "invalid numeric value %q for %q", p.Value.Raw, p.Key)
		}
		switch p.Key {
		case "pos_x":
			hf.posX = uint16(n)
		case "pos_y":
			hf.posY = uint16(n)
		case "width":
			hf.width = uint16(n)
		case "height":
			hf.height = uint16(n)
		}
	case "style":
		name, ok := stringLiteral(p.Value)
		if !ok {
			return kerr.Component(e.file, p.Pos.Line, "style must be a string naming a style")
		}
		id, known := e.styleIDs[name]
		if !known {
			return kerr.Component(e.file, p.Pos.Line, "unknown style %q", name)
		}
		hf.styleID = id
	case "checked":
		if p.Value.Kind == ast.ValBool && p.Value.Raw == "true" {
			hf.checked = 1
		}
	}
	return nil
}

func stringLiteral(v ast.Value) (string, bool) {
	switch v.Kind {
	case ast.ValString, ast.ValIdent:
		return v.Raw, true
	}
	return "", false
}

// convertStates converts an element's pseudo-state blocks into
// ir.StatePropertySet records, one per distinct recognized state keyword.
func (e *Expander) convertStates(blocks []ast.PseudoBlock) ([]ir.StatePropertySet, error) {
	var out []ir.StatePropertySet
	for _, pb := range blocks {
		flags, ok := ir.StateByName[pb.State]
		if !ok {
			return nil, kerr.Component(e.file, pb.Pos.Line, "unknown pseudo-state %q", pb.State)
		}
		_, props, _, _, err := e.convertProperties(pb.Properties, false)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.StatePropertySet{StateFlags: flags, Properties: props})
	}
	return out, nil
}

// computeLayout derives the element-header layout byte from an element's
// own flex/position properties (spec §3 "layout flag byte"). Styles carry
// no layout byte of their own (ir.StyleEntry has no Layout field), so this
// only ever looks at the element's direct properties, mirroring the
// teacher's final layout-byte assembly in its own element-resolution step
// but scoped to what this IR actually stores.
func computeLayout(props []ast.Property) uint8 {
	var layout uint8
	for _, p := range props {
		switch p.Key {
		case "flex_direction", "flex-direction":
			switch strings.ToLower(p.Value.Raw) {
			case "row":
				layout |= ir.LayoutDirectionRow
			case "column":
				layout |= ir.LayoutDirectionColumn
			case "row-reverse":
				layout |= ir.LayoutDirectionRowRev
			case "column-reverse":
				layout |= ir.LayoutDirectionColRev
			}
		case "align_items", "align-items":
			switch strings.ToLower(p.Value.Raw) {
			case "start":
				layout |= ir.LayoutAlignStart
			case "center":
				layout |= ir.LayoutAlignCenter
			case "end":
				layout |= ir.LayoutAlignEnd
			case "space-between":
				layout |= ir.LayoutAlignSpaceBtwn
			}
		case "flex_wrap", "flex-wrap":
			if strings.ToLower(p.Value.Raw) == "wrap" {
				layout |= ir.LayoutWrapBit
			}
		case "flex_grow", "flex-grow":
			if n, err := lower.ParseNumeric(p.Value.Raw); err == nil && n > 0 {
				layout |= ir.LayoutGrowBit
			}
		case "position":
			if strings.ToLower(p.Value.Raw) == "absolute" {
				layout |= ir.LayoutAbsoluteBit
			}
		}
	}
	return layout
}
