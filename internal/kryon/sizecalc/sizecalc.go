// Package sizecalc implements P9 (spec §4.10): computing every section's
// byte size and offset before a single byte is emitted, so the emitter
// (internal/kryon/emit) can write fixed-size child-offset slots and section
// offsets without a second pass.
//
// Grounded directly on the original compiler's SizeCalculator
// (_examples/original_source/src/size_calculator.rs), whose per-section
// formulas this package ports for elements, scripts, resources, template
// variables, template bindings and transforms. Two sizes differ from it:
// a style entry has a 4-byte header plus its state sets (styleSizes), and a
// component definition counts its whole template subtree
// (componentDefSizes). Offsets are laid out in the physical write order,
// strings first (physicalOrder below), which is not the header's field
// order (main-elements, styles, component-defs, animations, scripts,
// strings, resources, template-variables, template-bindings, transforms).
package sizecalc

import (
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
)

// Calculator computes per-entity CalculatedSize fields and per-section
// offsets/sizes over a shared CompilerState.
type Calculator struct {
	file  string
	state *ir.CompilerState
}

func New(file string, state *ir.CompilerState) *Calculator {
	return &Calculator{file: file, state: state}
}

// Calculate runs every per-section size pass, then computes section offsets
// and the grand total (spec §4.10, final paragraph). It must run after
// every element/style/component/script/resource/template/transform has been
// fully built (i.e. after P0-P8) and before internal/kryon/emit.
func (c *Calculator) Calculate() error {
	if err := c.validateLimits(); err != nil {
		return err
	}
	c.stringTableSize()
	c.elementSizes()
	c.styleSizes()
	c.componentDefSizes()
	c.scriptSizes()
	c.resourceSizes()
	c.templateVariableSizes()
	c.templateBindingSizes()
	c.transformSizes()
	return c.sectionOffsets()
}

func (c *Calculator) validateLimits() error {
	s := c.state
	if len(s.Styles) > ir.MaxStyles {
		return kerr.LimitExceeded(c.file, 0, "style limit (%d) exceeded", ir.MaxStyles)
	}
	if len(s.ComponentDefs) > ir.MaxComponentDefs {
		return kerr.LimitExceeded(c.file, 0, "component definition limit (%d) exceeded", ir.MaxComponentDefs)
	}
	if len(s.Elements) > ir.MaxElements {
		return kerr.LimitExceeded(c.file, 0, "element limit (%d) exceeded", ir.MaxElements)
	}
	for _, el := range s.Elements {
		if len(el.Properties) > ir.MaxProperties {
			return kerr.LimitExceeded(el.SourceFile, el.SourceLine, "property limit (%d) exceeded for element %q", ir.MaxProperties, el.SourceName)
		}
		if len(el.CustomProperties) > ir.MaxCustomProperties {
			return kerr.LimitExceeded(el.SourceFile, el.SourceLine, "custom property limit (%d) exceeded for element %q", ir.MaxCustomProperties, el.SourceName)
		}
		if len(el.Children) > ir.MaxChildren {
			return kerr.LimitExceeded(el.SourceFile, el.SourceLine, "child limit (%d) exceeded for element %q", ir.MaxChildren, el.SourceName)
		}
		if len(el.Events) > ir.MaxEvents {
			return kerr.LimitExceeded(el.SourceFile, el.SourceLine, "event limit (%d) exceeded for element %q", ir.MaxEvents, el.SourceName)
		}
	}
	for _, st := range s.Styles {
		if len(st.Properties) > ir.MaxStyleProperties {
			return kerr.LimitExceeded(c.file, 0, "style property limit (%d) exceeded for style %q", ir.MaxStyleProperties, st.Name)
		}
	}
	return nil
}

// propsSize sums the {id,type,size,payload} framing (3 header bytes) plus
// payload length, shared by every typed-property list in the format.
func propsSize(props []ir.Property) uint32 {
	var n uint32
	for _, p := range props {
		n += 3 + uint32(len(p.Value))
	}
	return n
}

func customPropsSize(props []ir.CustomProperty) uint32 {
	var n uint32
	for _, p := range props {
		n += 3 + uint32(len(p.Value))
	}
	return n
}

// statesSize sums the pseudo-state-set framing (spec §4.11: "state flags,
// property count, properties"): 2 header bytes per set plus its properties.
func statesSize(states []ir.StatePropertySet) uint32 {
	var n uint32
	for _, st := range states {
		n += 2 + propsSize(st.Properties)
	}
	return n
}

func (c *Calculator) stringTableSize() {
	var n uint32
	for _, s := range c.state.Strings {
		n += 1 + uint32(len(s.Text))
	}
	c.state.SectionSizes[ir.SectionStrings] = n
}

// elementSizes implements spec §4.10 item 2, one CalculatedSize per element
// (main-tree and template elements alike — component definitions need their
// template elements' sizes too), then sums only the main-tree (non
// -template) elements into the Elements section total, per spec §4.7: a
// component's template subtree is emitted as part of the component
// -definition section, not the main element tree.
func (c *Calculator) elementSizes() {
	for i := range c.state.Elements {
		el := &c.state.Elements[i]
		size := uint32(ir.ElementHeaderSize)
		size += propsSize(el.Properties)
		size += customPropsSize(el.CustomProperties)
		size += statesSize(el.States)
		size += uint32(len(el.Events)) * 2
		size += uint32(len(el.Children)) * 2
		el.CalculatedSize = size
	}

	var total uint32
	for _, idx := range c.state.NonDefinitionRootElements() {
		total += c.state.Elements[idx].CalculatedSize
	}
	c.state.SectionSizes[ir.SectionElements] = total
}

// styleSizes implements spec §4.10 item 3. The original's style size
// formula (size_calculator.rs's calculate_style_table_size) never accounts
// for pseudo-state property sets because the original has none; this
// compiler's style resolver (internal/kryon/style) does resolve per-state
// style overrides (spec §4.6), so their bytes need a home — this package
// extends the formula with the same 2-header-byte-per-state-set framing
// elements already use, rather than silently drop resolved state data on
// the floor. Unlike an element, a style entry has no field that already
// carries a state-set count, so the header grows by one byte (state_set
// _count) over the original's 3-byte id+name_index+property_count shape —
// otherwise emit would have no way to tell a reader how many state sets
// follow the property list.
func (c *Calculator) styleSizes() {
	var total uint32
	for i := range c.state.Styles {
		st := &c.state.Styles[i]
		size := uint32(4) // id + name_index + property_count + state_set_count
		size += propsSize(st.Properties)
		size += statesSize(st.States)
		st.CalculatedSize = size
		total += size
	}
	c.state.SectionSizes[ir.SectionStyles] = total
}

// componentDefSizes implements spec §4.10 item 4. The original
// (calculate_component_def_sizes) adds only the template root's own
// calculated_size, which would silently drop every non-root template
// descendant's bytes from the budget — a correctness gap, since spec.md
// §4.7 requires the whole template subtree to be emitted recursively as
// part of this section. This walks the subtree reachable from
// TemplateRootIndex and sums every element's CalculatedSize, root included.
func (c *Calculator) componentDefSizes() {
	var total uint32
	for i := range c.state.ComponentDefs {
		cd := &c.state.ComponentDefs[i]
		size := uint32(2) // name_index + property_count
		for _, pd := range cd.Properties {
			size += 3 + uint32(len(pd.DefaultValueStr))
		}
		size += c.templateSubtreeSize(cd.TemplateRootIndex)
		cd.CalculatedSize = size
		total += size
	}
	c.state.SectionSizes[ir.SectionComponentDefs] = total
}

func (c *Calculator) templateSubtreeSize(rootIdx int) uint32 {
	if rootIdx < 0 || rootIdx >= len(c.state.Elements) {
		return 0
	}
	el := &c.state.Elements[rootIdx]
	total := el.CalculatedSize
	for _, childIdx := range el.Children {
		total += c.templateSubtreeSize(childIdx)
	}
	return total
}

// scriptSizes implements spec §4.10 item 5.
func (c *Calculator) scriptSizes() {
	var total uint32
	for _, sc := range c.state.Scripts {
		size := uint32(6) // language + name_index + storage_mode + entry_point_count + data_size(2)
		size += uint32(len(sc.EntryPoints))
		if sc.StorageMode == ir.ScriptStorageInline {
			size += uint32(len(sc.InlineCode))
		}
		total += size
	}
	c.state.SectionSizes[ir.SectionScripts] = total
}

// resourceSizes implements spec §4.10 item 6: 4 fixed bytes per entry.
func (c *Calculator) resourceSizes() {
	c.state.SectionSizes[ir.SectionResources] = uint32(len(c.state.Resources)) * 4
}

// templateVariableSizes implements spec §4.10 item 7: 3 fixed bytes per
// entry.
func (c *Calculator) templateVariableSizes() {
	c.state.SectionSizes[ir.SectionTemplateVariables] = uint32(len(c.state.TemplateVars)) * 3
}

// templateBindingSizes implements spec §4.10 item 8: 5 + variable-count
// bytes per entry.
func (c *Calculator) templateBindingSizes() {
	var total uint32
	for _, b := range c.state.TemplateBindings {
		total += 5 + uint32(len(b.VariableIndices))
	}
	c.state.SectionSizes[ir.SectionTemplateBindings] = total
}

// transformSizes implements spec §4.10 item 9. Each entry's CalculatedSize
// is already computed and cached by ir.CompilerState.AddTransform at
// internment time, so this just sums the cached figures.
func (c *Calculator) transformSizes() {
	var total uint32
	for _, t := range c.state.Transforms {
		total += t.CalculatedSize
	}
	c.state.SectionSizes[ir.SectionTransforms] = total
}

// physicalOrder is the actual on-disk layout sequence spec §4.11 fixes for
// the emitter ("1. Header ... 2. String table ... 3. Element tree ... 4.
// Style table ... 5. Component definition table ... 6. Animation section
// ... 7. Script table ... 8. Resource table ... 9. Template variable table
// ... 10. Template binding table ... 11. Transform table"). This is a
// DIFFERENT sequence from the header's own section-count/offset FIELD
// order (spec §6: main-elements, styles, component-defs, animations,
// scripts, strings, resources, template-variables, template-bindings,
// transforms, which ir.Section's iota sequence mirrors) — the header field
// order is just which 2/4-byte slot each section's count/offset occupies
// inside the fixed header, independent of where that section's bytes
// physically sit in the body. sectionOffsets must walk bytes in
// physicalOrder to get correct absolute offsets, then store each one into
// its header-field slot (its ir.Section index).
var physicalOrder = []ir.Section{
	ir.SectionStrings,
	ir.SectionElements,
	ir.SectionStyles,
	ir.SectionComponentDefs,
	ir.SectionAnimations,
	ir.SectionScripts,
	ir.SectionResources,
	ir.SectionTemplateVariables,
	ir.SectionTemplateBindings,
	ir.SectionTransforms,
}

// sectionOffsets lays sections out starting at HeaderSize, in §4.11's fixed
// physical write order, then sets TotalSize to the offset past the last
// section (spec §4.10, final paragraph) and validates the documented
// total-size ceiling.
func (c *Calculator) sectionOffsets() error {
	s := c.state
	offset := uint32(ir.HeaderSize)
	for _, sec := range physicalOrder {
		s.SectionOffsets[sec] = offset
		offset += s.SectionSizes[sec]
	}
	s.TotalSize = offset
	if s.TotalSize > ir.MaxTotalSize {
		return kerr.LimitExceeded(c.file, 0, "total output size %d exceeds maximum %d", s.TotalSize, ir.MaxTotalSize)
	}
	return nil
}
