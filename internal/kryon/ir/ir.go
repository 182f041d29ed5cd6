// Package ir holds the shared, mutable compiler state (spec §3) that
// accumulates across phases P0–P8 and is consumed read-only by P9 and P10.
// Everything here is plain data: no phase logic lives in this package.
package ir

import "log"

// UIB container constants (spec §6).
const (
	Magic        = "KRB1"
	VersionMajor = 1
	VersionMinor = 0

	HeaderSize        = 72 // 4 + 2 + 2 + 20 + 40 + 4
	ElementHeaderSize = 19
)

// Header flag bits (spec §6: "has-styles, has-component-defs, has-scripts,
// has-resources, has-app, compressed, ...").
const (
	FlagHasStyles uint16 = 1 << iota
	FlagHasComponentDefs
	FlagHasAnimations
	FlagHasScripts
	FlagHasResources
	FlagHasApp
	FlagCompressed
	FlagHasTemplateVars
	FlagHasTemplateBindings
	FlagHasTransforms
)

// Section identifies one of the ten offset-indexed sections, in the order of
// the header's count/offset fields. The physical write order differs (the
// string table comes first; see sizecalc's physicalOrder).
type Section int

const (
	SectionElements Section = iota
	SectionStyles
	SectionComponentDefs
	SectionAnimations
	SectionScripts
	SectionStrings
	SectionResources
	SectionTemplateVariables
	SectionTemplateBindings
	SectionTransforms
	SectionCount // sentinel: number of sections
)

// Compiler limits (spec §3 I8, documented maxima).
const (
	MaxElements         = 1024
	MaxStrings          = 256
	MaxProperties       = 64
	MaxStyleProperties  = 128
	MaxCustomProperties = 32
	MaxStyles           = 256
	MaxChildren         = 256
	MaxEvents           = 16
	MaxResources        = 256
	MaxIncludeDepth     = 50
	MaxComponentDefs    = 128
	MaxBlockDepth       = 64
	MaxLineLength       = 4096
	MaxTotalSize        = 64 * 1024 * 1024
	MaxTransforms       = 256
)

// Element type tags.
const (
	ElemTypeApp uint8 = 0x00 + iota
	ElemTypeContainer
	ElemTypeText
	ElemTypeImage
	ElemTypeCanvas
	ElemTypeButton
	ElemTypeInput
	ElemTypeCheckbox
	ElemTypeRadio
	ElemTypeSlider
	ElemTypeList
	ElemTypeGrid
	ElemTypeScrollable
	ElemTypeTabs
	ElemTypeVideo
)

const (
	ElemTypeComponentUsage uint8 = 0xFE // unexpanded component instance marker
	ElemTypeUnknown        uint8 = 0xFF
	ElemTypeCustomBase     uint8 = 0x31
)

// ElementTypeByName maps a known KRY element-type keyword to its KRB tag.
// Anything not in this table is either a component name (resolved by the
// parser/component expander) or truly unknown (rejected by semantic
// analysis).
var ElementTypeByName = map[string]uint8{
	"App":        ElemTypeApp,
	"Container":  ElemTypeContainer,
	"Text":       ElemTypeText,
	"Image":      ElemTypeImage,
	"Canvas":     ElemTypeCanvas,
	"Button":     ElemTypeButton,
	"Input":      ElemTypeInput,
	"Checkbox":   ElemTypeCheckbox,
	"Radio":      ElemTypeRadio,
	"Slider":     ElemTypeSlider,
	"List":       ElemTypeList,
	"Grid":       ElemTypeGrid,
	"Scrollable": ElemTypeScrollable,
	"Tabs":       ElemTypeTabs,
	"Video":      ElemTypeVideo,
}

// Value-type tags for typed property records (spec §3).
const (
	ValTypeByte       uint8 = 0x01
	ValTypeShort      uint8 = 0x02
	ValTypeColor      uint8 = 0x03
	ValTypeString     uint8 = 0x04
	ValTypeResource   uint8 = 0x05
	ValTypePercentage uint8 = 0x06
	ValTypeEdgeInsets uint8 = 0x08
	ValTypeEnum       uint8 = 0x09
	ValTypeCustom     uint8 = 0x0B
	ValTypeTransform  uint8 = 0x0C // index into the Transform section
)

// Resource types/formats.
const (
	ResTypeImage  uint8 = 0x01
	ResTypeFont   uint8 = 0x02
	ResTypeSound  uint8 = 0x03
	ResTypeVideo  uint8 = 0x04
	ResTypeCustom uint8 = 0x05
	ResTypeScript uint8 = 0x06

	ResFormatExternal uint8 = 0x00
	ResFormatInline   uint8 = 0x01
)

// Script storage modes.
const (
	ScriptStorageInline   uint8 = 0x00
	ScriptStorageExternal uint8 = 0x01
)

// Script language tags.
const (
	ScriptLangLua uint8 = iota
	ScriptLangJavaScript
	ScriptLangPython
	ScriptLangWren
)

var ScriptLangByName = map[string]uint8{
	"lua":        ScriptLangLua,
	"javascript": ScriptLangJavaScript,
	"python":     ScriptLangPython,
	"wren":       ScriptLangWren,
}

// Event type tags.
const (
	EventTypeClick uint8 = 0x01 + iota
	EventTypePress
	EventTypeRelease
	EventTypeChange
	EventTypeFocus
	EventTypeBlur
)

var EventTypeByName = map[string]uint8{
	"onClick":   EventTypeClick,
	"onPress":   EventTypePress,
	"onRelease": EventTypeRelease,
	"onChange":  EventTypeChange,
	"onFocus":   EventTypeFocus,
	"onBlur":    EventTypeBlur,
}

// Pseudo-state flags (spec §4.2, GLOSSARY).
const (
	StateHover uint8 = 1 << iota
	StateActive
	StateFocus
	StateDisabled
	StateChecked
)

var StateByName = map[string]uint8{
	"hover":    StateHover,
	"active":   StateActive,
	"focus":    StateFocus,
	"disabled": StateDisabled,
	"checked":  StateChecked,
}

// Layout byte bit layout (direction in bits 0-1, alignment in bits 2-3,
// wrap/grow/absolute as single bits above that).
const (
	LayoutDirectionMask   uint8 = 0x03
	LayoutDirectionRow    uint8 = 0
	LayoutDirectionColumn uint8 = 1
	LayoutDirectionRowRev uint8 = 2
	LayoutDirectionColRev uint8 = 3

	LayoutAlignMask       uint8 = 0x0C
	LayoutAlignStart      uint8 = 0 << 2
	LayoutAlignCenter     uint8 = 1 << 2
	LayoutAlignEnd        uint8 = 2 << 2
	LayoutAlignSpaceBtwn  uint8 = 3 << 2
	LayoutWrapBit         uint8 = 1 << 4
	LayoutGrowBit         uint8 = 1 << 5
	LayoutAbsoluteBit     uint8 = 1 << 6
)

// Property holds one resolved, typed KRB property record (spec §3 "Typed
// property record").
type Property struct {
	ID        uint8
	ValueType uint8
	Value     []byte // len(Value) must fit a byte; validated at append time
}

func (p Property) Size() int { return len(p.Value) }

// CustomProperty is a property keyed by an arbitrary (interned) name rather
// than a standard property id.
type CustomProperty struct {
	KeyIndex  uint8
	ValueType uint8
	Value     []byte
}

// Event is one event-handler binding on an element.
type Event struct {
	EventType  uint8
	CallbackID uint8 // string table index of the handler function name
}

// StatePropertySet is the resolved property bundle for one pseudo-state.
type StatePropertySet struct {
	StateFlags uint8
	Properties []Property
}

// Element is a node in the UI tree (spec §3 "Element"). Children are
// referenced by index into CompilerState.Elements, never by pointer, so the
// tree survives slice growth and is trivially serializable (spec §9 "Use
// indices into a flat element vector").
type Element struct {
	Type          uint8
	IDStringIndex uint8 // 0 = no id
	PosX, PosY    uint16
	Width, Height uint16
	Layout        uint8
	StyleID       uint8 // 0 = none
	Checked       uint8

	Properties       []Property
	CustomProperties []CustomProperty
	States           []StatePropertySet
	Events           []Event
	Children         []int // indices into CompilerState.Elements

	ParentIndex       int // -1 for a root
	SelfIndex         int
	IsTemplateElement bool // true for every element belonging to a component template (spec I6/§4.7), not just its root

	// Provenance, carried through every phase for error reporting (spec §9
	// "Error locality").
	SourceFile string
	SourceLine int
	SourceName string // KRY element-type name, or component name if expanded

	// Size/offset, computed by sizecalc and consumed by emit (spec §4.10/§4.11).
	CalculatedSize uint32
	AbsoluteOffset uint32
}

// StyleEntry is a fully- or partially-resolved style (spec §3 "Style").
type StyleEntry struct {
	ID         uint8 // 1-based; 0 means "unassigned"
	Name       string
	NameIndex  uint8
	Extends    []string // base style names, in extends-list order
	Properties []Property
	States     []StatePropertySet

	Resolved   bool
	Resolving  bool // cycle-detection sentinel (spec I3)

	CalculatedSize uint32
}

// ComponentPropertyDef is one declared property of a component definition
// (spec §3 "Component definition").
type ComponentPropertyDef struct {
	Name            string
	NameIndex       uint8
	ValueTypeHint   uint8
	HasDefault      bool
	DefaultValueStr string
}

// ComponentDefinition is a parsed `Define Name { Properties {...} <tree> }`
// block.
type ComponentDefinition struct {
	Name                string
	NameIndex           uint8
	Properties          []ComponentPropertyDef
	TemplateRootIndex   int // index into CompilerState.Elements
	CalculatedSize      uint32
}

// ScriptEntry is one `@script`/`@function` block (spec §3 "Script").
type ScriptEntry struct {
	Language     uint8
	NameIndex    uint8 // 0 if anonymous
	StorageMode  uint8
	EntryPoints  []uint8 // string indices of extracted function names
	InlineCode   []byte  // non-nil only when StorageMode == ScriptStorageInline
	ResourceIdx  uint8   // valid only when StorageMode == ScriptStorageExternal
}

// ResourceEntry is one entry in the resource table (spec §3 "Resource").
type ResourceEntry struct {
	Type            uint8
	NameIndex       uint8
	Format          uint8
	DataStringIndex uint8
	Index           uint8 // 0-based position in CompilerState.Resources
}

// TemplateVariable is a deferred runtime-bindable value (spec §3, GLOSSARY).
type TemplateVariable struct {
	Name            string
	NameIndex       uint8
	ValueType       uint8
	DefaultIndex    uint8 // string index of the default value
}

// TemplateBinding ties one element/property pair to an expression and the
// set of template-variable indices it references.
type TemplateBinding struct {
	ElementIndex   int
	PropertyID     uint8
	ExpressionIdx  uint8   // string index of the raw `{{...}}` expression text
	VariableIndices []uint8 // indices into CompilerState.TemplateVariables
}

// TransformOp is one component of a parsed `transform:` value, e.g. the
// `translate(10px, 5px)` in `transform: "translate(10px, 5px) rotate(15deg)"`.
const (
	TransformOpTranslate uint8 = iota
	TransformOpScale
	TransformOpRotate
	TransformOpSkew
)

type TransformOp struct {
	Kind  uint8
	Value []byte
}

// TransformEntry is one named, resolved transform (spec §4.10 item 9, §6
// emission order item 11).
type TransformEntry struct {
	NameIndex      uint8
	Ops            []TransformOp
	CalculatedSize uint32
}

// StringEntry is one slot of the interned, insertion-ordered string table.
type StringEntry struct {
	Text  string
	Index uint8
}

// CompilerState is the single mutable accumulator threaded through phases
// P0–P8 (spec §3 "Lifecycles", §5). Nothing is freed until compilation
// returns; a fresh CompilerState is created per Compile call (spec §5 — no
// shared global state between runs).
type CompilerState struct {
	Elements      []Element
	Strings       []StringEntry
	stringIndex   map[string]uint8
	Styles        []StyleEntry
	ComponentDefs []ComponentDefinition
	Scripts       []ScriptEntry
	Resources     []ResourceEntry
	resourceIndex map[string]uint8 // keyed by "type:path"
	TemplateVars      []TemplateVariable
	TemplateBindings  []TemplateBinding
	Transforms        []TransformEntry
	transformIndex    map[string]uint8

	MainRootIndex int // index into Elements of the single main-tree root (-1 until known)
	HasApp        bool
	HeaderFlags   uint16

	SourceFile string // current file, for diagnostics (spec §9 "Error locality")

	// Offsets/sizes, populated by sizecalc (internal/kryon/sizecalc) and
	// consumed by emit (internal/kryon/emit). Kept here, not duplicated in a
	// separate struct, so both phases read the exact same numbers (spec §9:
	// "Both must consult a single shared constant").
	SectionOffsets [ir_SectionCount]uint32
	SectionSizes   [ir_SectionCount]uint32
	TotalSize      uint32

	Logger *log.Logger // nil means silent; see SPEC_FULL.md §4.13
}

// ir_SectionCount avoids a circular literal reference to SectionCount inside
// the array type above while keeping a single source of truth for the
// section count.
const ir_SectionCount = int(SectionCount)

// NewCompilerState returns a CompilerState with its slices pre-sized the way
// the original implementation did, and a discarding logger by default.
func NewCompilerState() *CompilerState {
	s := &CompilerState{
		Elements:      make([]Element, 0, 64),
		Strings:       make([]StringEntry, 0, 128),
		stringIndex:   make(map[string]uint8, 128),
		Styles:        make([]StyleEntry, 0, 32),
		Resources:     make([]ResourceEntry, 0, 16),
		resourceIndex: make(map[string]uint8, 16),
		ComponentDefs: make([]ComponentDefinition, 0, 16),
		transformIndex: make(map[string]uint8, 8),
		MainRootIndex: -1,
	}
	return s
}

func (s *CompilerState) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// Logf emits a debug line through the state's logger, if any (spec §4.13).
func (s *CompilerState) Logf(format string, args ...any) { s.logf(format, args...) }
