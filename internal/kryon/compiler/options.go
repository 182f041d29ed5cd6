// Package compiler implements the top-level orchestration spec §6 names:
// a single Options record and a Compile/CompileFile entry point that runs
// the full P0-P10 pipeline over one source unit.
//
// Grounded on the teacher's main.go, which wires the original's simpler
// Pass 0.1/0.2/1/1.2/1.5/2/3 sequence by hand in a single function; this
// package generalizes that same "one function, one log line per phase
// boundary" shape to the fuller pipeline (semantic analysis, script
// processing, and the lower/transform/sizecalc/emit split) documented in
// SPEC_FULL.md §2's package map.
package compiler

// TargetPlatform names the deployment target a compiled UIB is intended
// for. The original implementation accepts and stores this value but never
// branches on it anywhere in code generation or size calculation (no
// platform-specific encoding exists in the binary format); kryonc keeps
// that same accepted-but-inert shape rather than invent behavior the format
// has no room to express. See DESIGN.md.
type TargetPlatform uint8

const (
	TargetUniversal TargetPlatform = iota
	TargetDesktop
	TargetMobile
	TargetWeb
	TargetEmbedded
)

var targetPlatformNames = map[string]TargetPlatform{
	"universal": TargetUniversal,
	"desktop":   TargetDesktop,
	"mobile":    TargetMobile,
	"web":       TargetWeb,
	"embedded":  TargetEmbedded,
}

// ParseTargetPlatform looks up a platform name as accepted by cmd/kryonc's
// --target flag, case-sensitively matching the original CLI's lowercase
// vocabulary.
func ParseTargetPlatform(name string) (TargetPlatform, bool) {
	t, ok := targetPlatformNames[name]
	return t, ok
}

func (t TargetPlatform) String() string {
	for name, v := range targetPlatformNames {
		if v == t {
			return name
		}
	}
	return "universal"
}

// Options is the fixed configuration record spec §6 documents. Every field
// corresponds 1:1 to a field the original implementation's CompilerOptions
// carries; Go's static typing means there is no "unknown fields are
// ignored" escape hatch, so forward compatibility is instead handled by the
// With* functional options below, which let new fields be added without
// breaking existing call sites that build Options via them.
type Options struct {
	OptimizationLevel  uint8 // 0, 1, or 2
	TargetPlatform     TargetPlatform
	EmbedScripts       bool
	CompressOutput     bool
	MaxFileSize        uint64 // 0 = unbounded
	IncludeDirectories []string
	GenerateDebugInfo  bool
	CustomVariables    map[string]string
	DebugMode          bool
}

// DefaultOptions mirrors the original implementation's CompilerOptions::default.
func DefaultOptions() Options {
	return Options{
		OptimizationLevel: 1,
		TargetPlatform:    TargetUniversal,
	}
}

// Option is a functional option over Options, applied on top of
// DefaultOptions by NewOptions.
type Option func(*Options)

// NewOptions builds an Options starting from DefaultOptions and applying
// opts in order.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithOptimizationLevel(level uint8) Option {
	return func(o *Options) { o.OptimizationLevel = level }
}

func WithTargetPlatform(t TargetPlatform) Option {
	return func(o *Options) { o.TargetPlatform = t }
}

func WithEmbedScripts(v bool) Option {
	return func(o *Options) { o.EmbedScripts = v }
}

func WithCompressOutput(v bool) Option {
	return func(o *Options) { o.CompressOutput = v }
}

func WithMaxFileSize(n uint64) Option {
	return func(o *Options) { o.MaxFileSize = n }
}

func WithIncludeDirectories(dirs []string) Option {
	return func(o *Options) { o.IncludeDirectories = dirs }
}

func WithGenerateDebugInfo(v bool) Option {
	return func(o *Options) { o.GenerateDebugInfo = v }
}

func WithCustomVariables(vars map[string]string) Option {
	return func(o *Options) { o.CustomVariables = vars }
}

func WithDebugMode(v bool) Option {
	return func(o *Options) { o.DebugMode = v }
}

// Stats reports what one Compile call did, mirroring the fields of the
// original implementation's CompilationStats that this compiler can
// actually populate; PeakMemoryUsage is dropped rather than faked (the
// original declares the field but never assigns it either).
type Stats struct {
	SourceSize       uint64
	OutputSize       uint64
	CompressionRatio float64
	ElementCount     int
	StyleCount       int
	ComponentCount   int
	ScriptCount      int
	ResourceCount    int
	StringCount      int
	IncludeCount     int
	VariableCount    int
	CompileTimeMS    int64
}
