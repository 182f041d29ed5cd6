// Package emit implements P10 (spec §4.11): writing the fully-sized
// CompilerState out as a single UIB binary blob.
//
// Grounded on the teacher's writer.go Pass 3 (writeKrbFile) for the overall
// shape — header, then sections in a fixed physical order, each self
// -checked against its pre-computed size — and on the original compiler's
// codegen.rs (write_header_with_offsets, write_element_recursive,
// write_style_table, write_component_table, write_script_table,
// write_resource_table, write_template_variable_table,
// write_template_binding_table, write_transform_table) for per-record field
// order. Two deliberate departures from the original, both already reflected
// in internal/kryon/sizecalc's formulas:
//
//   - Child element offsets are absolute (spec §4.11: "absolute 16-bit
//     offsets ... filled once the child has been emitted"), not the
//     original's parent-relative offsets, and they are genuinely
//     backpatched — the original reserves the two placeholder bytes per
//     child but never writes anything into them, leaving every child
//     offset zero in its output.
//   - Style entries carry a fourth header byte counting pseudo-state
//     property sets, a field the original's 3-byte style header has no
//     room for because the original never resolves per-state overrides.
//
// Rather than write into an os.File the way the teacher does, Emit targets
// an in-memory buffer and returns the finished bytes, matching spec §6's
// compile(...) -> (output_bytes, stats) entry point.
package emit

import (
	"bytes"
	"encoding/binary"

	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
)

// Emitter writes one CompilerState to its final binary form. It assumes
// sizecalc.Calculate has already run: every CalculatedSize, SectionSizes,
// SectionOffsets, and TotalSize field must be populated.
type Emitter struct {
	state *ir.CompilerState
	buf   *bytes.Buffer
}

func New(state *ir.CompilerState) *Emitter {
	return &Emitter{state: state}
}

// Emit produces the complete UIB byte stream for the receiver's state.
func (e *Emitter) Emit() ([]byte, error) {
	s := e.state
	e.buf = bytes.NewBuffer(make([]byte, 0, s.TotalSize))

	e.writeHeader()

	e.writeStringTable()
	if err := e.writeElementTree(); err != nil {
		return nil, err
	}
	e.writeStyleTable()
	if err := e.writeComponentTable(); err != nil {
		return nil, err
	}
	// Animation section is reserved and always empty (spec §4.11 item 6;
	// no animation authoring surface exists — see SPEC_FULL.md §9 (b)).
	e.writeScriptTable()
	if err := e.writeResourceTable(); err != nil {
		return nil, err
	}
	e.writeTemplateVariableTable()
	e.writeTemplateBindingTable()
	e.writeTransformTable()

	if uint32(e.buf.Len()) != s.TotalSize {
		return nil, kerr.Codegen("final output size mismatch: wrote %d bytes, sizecalc computed %d", e.buf.Len(), s.TotalSize)
	}
	return e.buf.Bytes(), nil
}

func (e *Emitter) u8(v uint8) { e.buf.WriteByte(v) }

func (e *Emitter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Emitter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// patchU16 overwrites the two bytes at an already-written position. Used
// only for backpatching an element's child-offset slots once the child's
// absolute offset is known (spec §4.11 item 3).
func (e *Emitter) patchU16(pos int, v uint16) {
	b := e.buf.Bytes()
	binary.LittleEndian.PutUint16(b[pos:pos+2], v)
}

// writeHeader implements spec §6: magic, version, flags, ten section counts
// in header-field order, ten section offsets in the same order (already
// computed by sizecalc into SectionOffsets, indexed by ir.Section), and the
// grand total size.
func (e *Emitter) writeHeader() {
	s := e.state
	e.buf.WriteString(ir.Magic)
	e.u16((uint16(ir.VersionMajor) << 8) | uint16(ir.VersionMinor))
	e.u16(s.HeaderFlags)

	e.u16(uint16(len(s.NonDefinitionRootElements())))
	e.u16(uint16(len(s.Styles)))
	e.u16(uint16(len(s.ComponentDefs)))
	e.u16(0) // animation count, always 0
	e.u16(uint16(len(s.Scripts)))
	e.u16(uint16(len(s.Strings)))
	e.u16(uint16(len(s.Resources)))
	e.u16(uint16(len(s.TemplateVars)))
	e.u16(uint16(len(s.TemplateBindings)))
	e.u16(uint16(len(s.Transforms)))

	for sec := ir.Section(0); sec < ir.SectionCount; sec++ {
		e.u32(s.SectionOffsets[sec])
	}
	e.u32(s.TotalSize)
}

// writeStringTable implements spec §4.11 item 2: length-prefixed UTF-8
// strings, insertion order, no leading count field (the count already lives
// in the header).
func (e *Emitter) writeStringTable() {
	for _, str := range e.state.Strings {
		e.u8(uint8(len(str.Text)))
		e.buf.WriteString(str.Text)
	}
}

// writeElementTree implements spec §4.11 item 3: depth-first from the main
// root, then any other non-definition-root elements not reachable from it.
func (e *Emitter) writeElementTree() error {
	s := e.state
	if s.MainRootIndex < 0 {
		return kerr.Codegen("no main-tree root element to emit")
	}
	visited := make([]bool, len(s.Elements))
	if err := e.writeElementRecursive(s.MainRootIndex, visited); err != nil {
		return err
	}
	for _, idx := range s.NonDefinitionRootElements() {
		if !visited[idx] {
			if err := e.writeElementRecursive(idx, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeElementRecursive writes one element's 19-byte header, its property /
// custom-property / state / event records, then a child-offset slot per
// child (spec §4.11 item 3), recursing into each child and backpatching its
// slot with the child's real absolute offset once known. It is shared by
// the main element tree and every component-definition template subtree.
func (e *Emitter) writeElementRecursive(idx int, visited []bool) error {
	el := &e.state.Elements[idx]
	visited[idx] = true
	el.AbsoluteOffset = uint32(e.buf.Len())
	startPos := e.buf.Len()

	e.u8(el.Type)
	e.u8(el.IDStringIndex)
	e.u16(el.PosX)
	e.u16(el.PosY)
	e.u16(el.Width)
	e.u16(el.Height)
	e.u8(el.Layout)
	e.u8(el.StyleID)
	e.u8(el.Checked)
	e.u8(uint8(len(el.Properties)))
	e.u8(uint8(len(el.Children)))
	e.u8(uint8(len(el.Events)))
	e.u8(0) // animation count, always 0
	e.u8(uint8(len(el.CustomProperties)))
	e.u8(uint8(len(el.States)))

	e.writeProperties(el.Properties)
	for _, cp := range el.CustomProperties {
		e.u8(cp.KeyIndex)
		e.u8(cp.ValueType)
		e.u8(uint8(len(cp.Value)))
		e.buf.Write(cp.Value)
	}
	for _, st := range el.States {
		e.u8(st.StateFlags)
		e.u8(uint8(len(st.Properties)))
		e.writeProperties(st.Properties)
	}
	for _, ev := range el.Events {
		e.u8(ev.EventType)
		e.u8(ev.CallbackID)
	}

	childSlots := make([]int, len(el.Children))
	for i := range el.Children {
		childSlots[i] = e.buf.Len()
		e.u16(0) // placeholder, patched below once the child is written
	}
	// CalculatedSize covers this element's own record, child slots included
	// but not the children themselves.
	if wrote := uint32(e.buf.Len() - startPos); wrote != el.CalculatedSize {
		return kerr.Codegen("element %q size mismatch: wrote %d bytes, sizecalc computed %d", el.SourceName, wrote, el.CalculatedSize)
	}
	for i, childIdx := range el.Children {
		if err := e.writeElementRecursive(childIdx, visited); err != nil {
			return err
		}
		e.patchU16(childSlots[i], uint16(e.state.Elements[childIdx].AbsoluteOffset))
	}
	return nil
}

func (e *Emitter) writeProperties(props []ir.Property) {
	for _, p := range props {
		e.u8(p.ID)
		e.u8(p.ValueType)
		e.u8(uint8(len(p.Value)))
		e.buf.Write(p.Value)
	}
}

// writeStyleTable implements spec §4.10 item 3 / §4.11 item 4. Each entry's
// header carries a state-set count the original format has no room for
// (see package doc).
func (e *Emitter) writeStyleTable() {
	for i := range e.state.Styles {
		st := &e.state.Styles[i]
		e.u8(st.ID)
		e.u8(st.NameIndex)
		e.u8(uint8(len(st.Properties)))
		e.u8(uint8(len(st.States)))
		e.writeProperties(st.Properties)
		for _, ss := range st.States {
			e.u8(ss.StateFlags)
			e.u8(uint8(len(ss.Properties)))
			e.writeProperties(ss.Properties)
		}
	}
}

// writeComponentTable implements spec §4.10 item 4 / §4.11 item 5: name,
// declared properties with their defaults, then the whole template subtree
// written recursively (spec §4.7).
func (e *Emitter) writeComponentTable() error {
	visited := make([]bool, len(e.state.Elements))
	for i := range e.state.ComponentDefs {
		cd := &e.state.ComponentDefs[i]
		e.u8(cd.NameIndex)
		e.u8(uint8(len(cd.Properties)))
		for _, pd := range cd.Properties {
			e.u8(pd.NameIndex)
			e.u8(pd.ValueTypeHint)
			e.u8(uint8(len(pd.DefaultValueStr)))
			e.buf.WriteString(pd.DefaultValueStr)
		}
		if cd.TemplateRootIndex >= 0 {
			if err := e.writeElementRecursive(cd.TemplateRootIndex, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeScriptTable implements spec §4.10 item 5 / §4.11 item 7.
func (e *Emitter) writeScriptTable() {
	for _, sc := range e.state.Scripts {
		e.u8(sc.Language)
		e.u8(sc.NameIndex)
		e.u8(sc.StorageMode)
		e.u8(uint8(len(sc.EntryPoints)))
		if sc.StorageMode == ir.ScriptStorageInline {
			e.u16(uint16(len(sc.InlineCode)))
		} else {
			e.u16(0)
		}
		for _, ep := range sc.EntryPoints {
			e.u8(ep)
		}
		if sc.StorageMode == ir.ScriptStorageInline {
			e.buf.Write(sc.InlineCode)
		}
	}
}

// writeResourceTable implements spec §4.10 item 6 / §4.11 item 8. Only the
// external-reference format is supported, matching the original compiler.
func (e *Emitter) writeResourceTable() error {
	for _, r := range e.state.Resources {
		if r.Format != ir.ResFormatExternal {
			return kerr.Codegen("unsupported resource format %d for resource %d", r.Format, r.Index)
		}
		e.u8(r.Type)
		e.u8(r.NameIndex)
		e.u8(r.Format)
		e.u8(r.DataStringIndex)
	}
	return nil
}

// writeTemplateVariableTable implements spec §4.10 item 7 / §4.11 item 9.
func (e *Emitter) writeTemplateVariableTable() {
	for _, tv := range e.state.TemplateVars {
		e.u8(tv.NameIndex)
		e.u8(tv.ValueType)
		e.u8(tv.DefaultIndex)
	}
}

// writeTemplateBindingTable implements spec §4.10 item 8 / §4.11 item 10.
func (e *Emitter) writeTemplateBindingTable() {
	for _, b := range e.state.TemplateBindings {
		e.u16(uint16(b.ElementIndex))
		e.u8(b.PropertyID)
		e.u8(b.ExpressionIdx)
		e.u8(uint8(len(b.VariableIndices)))
		for _, vi := range b.VariableIndices {
			e.u8(vi)
		}
	}
}

// writeTransformTable implements spec §4.10 item 9 / §4.11 item 11. Each
// entry's name index precedes its ops; each op record is {kind, value_type,
// size, payload}, matching the 3-header-byte framing AddTransform already
// budgets for. Every op's payload is a signed ×100 fixed-point encoding
// (internal/kryon/transform), so value_type is always ValTypePercentage —
// derived from that shared convention rather than stored per-op.
func (e *Emitter) writeTransformTable() {
	for _, t := range e.state.Transforms {
		e.u8(t.NameIndex)
		e.u8(uint8(len(t.Ops)))
		for _, op := range t.Ops {
			e.u8(op.Kind)
			e.u8(ir.ValTypePercentage)
			e.u8(uint8(len(op.Value)))
			e.buf.Write(op.Value)
		}
	}
}
