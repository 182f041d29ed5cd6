package emit

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/sizecalc"
)

func calc(t *testing.T, state *ir.CompilerState) {
	t.Helper()
	require.NoError(t, sizecalc.New("t.kry", state).Calculate())
}

func TestEmitHeaderFieldsMatchState(t *testing.T) {
	state := ir.NewCompilerState()
	root, err := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	require.NoError(t, err)
	state.MainRootIndex = root
	calc(t, state)

	out, err := New(state).Emit()
	require.NoError(t, err)

	require.Equal(t, "KRB1", string(out[0:4]))
	version := binary.LittleEndian.Uint16(out[4:6])
	require.Equal(t, uint16(ir.VersionMajor), version>>8)
	require.Equal(t, uint16(ir.VersionMinor), version&0xFF)

	mainElementCount := binary.LittleEndian.Uint16(out[8:10])
	require.Equal(t, uint16(1), mainElementCount)

	require.Equal(t, uint32(len(out)), state.TotalSize)
}

func TestEmitStringTableWritesLengthPrefixedText(t *testing.T) {
	state := ir.NewCompilerState()
	root, _ := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	state.MainRootIndex = root
	_, err := state.AddString("hello")
	require.NoError(t, err)
	calc(t, state)

	out, err := New(state).Emit()
	require.NoError(t, err)

	off := state.SectionOffsets[ir.SectionStrings]
	require.Equal(t, byte(5), out[off])
	require.Equal(t, "hello", string(out[off+1:off+6]))
}

func TestEmitElementTreeWritesAbsoluteChildOffset(t *testing.T) {
	state := ir.NewCompilerState()
	root, err := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	require.NoError(t, err)
	state.MainRootIndex = root
	child, err := state.NewElement(ir.ElemTypeText, root, "t.kry", 1, "Text")
	require.NoError(t, err)
	require.NoError(t, state.AddChild(root, child))
	calc(t, state)

	out, err := New(state).Emit()
	require.NoError(t, err)

	rootOff := state.Elements[root].AbsoluteOffset
	childOff := state.Elements[child].AbsoluteOffset
	require.NotZero(t, childOff)

	// Child-offset slot sits right after the 19-byte header (no properties,
	// no custom properties, no state sets, no events on either element).
	slot := rootOff + ir.ElementHeaderSize
	got := binary.LittleEndian.Uint16(out[slot : slot+2])
	require.Equal(t, uint16(childOff), got)
}

func TestEmitOrdersMainRootBeforeOrphanElements(t *testing.T) {
	state := ir.NewCompilerState()
	orphan, err := state.NewElement(ir.ElemTypeContainer, -1, "t.kry", 1, "Orphan")
	require.NoError(t, err)
	root, err := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	require.NoError(t, err)
	state.MainRootIndex = root
	calc(t, state)

	_, err = New(state).Emit()
	require.NoError(t, err)
	require.Less(t, state.Elements[root].AbsoluteOffset, state.Elements[orphan].AbsoluteOffset)
}

func TestEmitStyleTableIncludesStateSetCount(t *testing.T) {
	state := ir.NewCompilerState()
	root, _ := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	state.MainRootIndex = root
	state.Styles = append(state.Styles, ir.StyleEntry{
		ID:   1,
		Name: "box",
		States: []ir.StatePropertySet{
			{StateFlags: ir.StateHover, Properties: []ir.Property{
				{ID: ir.PropOpacity, ValueType: ir.ValTypePercentage, Value: []byte{2, 0}},
			}},
		},
	})
	calc(t, state)

	out, err := New(state).Emit()
	require.NoError(t, err)

	off := state.SectionOffsets[ir.SectionStyles]
	require.Equal(t, byte(1), out[off])   // id
	require.Equal(t, byte(0), out[off+1]) // name_index
	require.Equal(t, byte(0), out[off+2]) // property_count
	require.Equal(t, byte(1), out[off+3]) // state_set_count
	require.Equal(t, byte(ir.StateHover), out[off+4])
}

func TestEmitTransformTableWritesThreeByteOpHeader(t *testing.T) {
	state := ir.NewCompilerState()
	root, _ := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	state.MainRootIndex = root
	_, err := state.AddTransform("rotate(15deg)", []ir.TransformOp{{Kind: ir.TransformOpRotate, Value: []byte{0xDC, 0x05}}})
	require.NoError(t, err)
	calc(t, state)

	out, err := New(state).Emit()
	require.NoError(t, err)

	off := state.SectionOffsets[ir.SectionTransforms]
	require.Equal(t, state.Transforms[0].NameIndex, out[off])
	require.Equal(t, byte(1), out[off+1]) // op count
	require.Equal(t, ir.TransformOpRotate, out[off+2])
	require.Equal(t, ir.ValTypePercentage, out[off+3])
	require.Equal(t, byte(2), out[off+4])
	require.Equal(t, []byte{0xDC, 0x05}, out[off+5:off+7])
}

func TestEmitFailsWhenNoMainRoot(t *testing.T) {
	state := ir.NewCompilerState()
	_, err := New(state).Emit()
	require.Error(t, err)
}

func TestEmitTotalLengthMatchesTotalSize(t *testing.T) {
	state := ir.NewCompilerState()
	root, err := state.NewElement(ir.ElemTypeApp, -1, "t.kry", 1, "App")
	require.NoError(t, err)
	require.NoError(t, state.AddProperty(root, ir.Property{ID: ir.PropWidth, ValueType: ir.ValTypeShort, Value: []byte{10, 0}}))
	state.MainRootIndex = root

	child, err := state.NewElement(ir.ElemTypeText, root, "t.kry", 2, "Text")
	require.NoError(t, err)
	require.NoError(t, state.AddChild(root, child))

	state.Styles = append(state.Styles, ir.StyleEntry{ID: 1, Name: "box"})
	_, err = state.AddResource(ir.ResTypeImage, "a.png")
	require.NoError(t, err)
	_, err = state.AddTransform("scale(2)", []ir.TransformOp{{Kind: ir.TransformOpScale, Value: []byte{200, 0, 200, 0}}})
	require.NoError(t, err)

	calc(t, state)

	out, err := New(state).Emit()
	require.NoError(t, err)
	require.Len(t, out, int(state.TotalSize))
}
