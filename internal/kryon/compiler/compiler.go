package compiler

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/waozixyz/kryonc/internal/kryon/component"
	"github.com/waozixyz/kryonc/internal/kryon/emit"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
	"github.com/waozixyz/kryonc/internal/kryon/parser"
	"github.com/waozixyz/kryonc/internal/kryon/preprocess"
	"github.com/waozixyz/kryonc/internal/kryon/script"
	"github.com/waozixyz/kryonc/internal/kryon/semantic"
	"github.com/waozixyz/kryonc/internal/kryon/sizecalc"
	"github.com/waozixyz/kryonc/internal/kryon/style"
	"github.com/waozixyz/kryonc/internal/kryon/vars"
)

// includeReader returns a preprocess.Reader that serves source for
// sourceName directly (Compile receives it as bytes, not a path the
// filesystem necessarily has), falls back to the real filesystem for every
// other @include target, and — when the direct path under an including
// file's own directory doesn't resolve — retries the same basename against
// each of dirs, in order. This is the conventional compiler -I search-path
// behavior; the original implementation accepts include_directories as an
// option but never actually consults it when resolving an @include, a gap
// this package does not reproduce (see DESIGN.md).
func includeReader(source []byte, sourceName string, dirs []string) preprocess.Reader {
	return func(path string) ([]byte, error) {
		if path == sourceName {
			return source, nil
		}
		data, err := preprocess.OSReader(path)
		if err == nil || len(dirs) == 0 {
			return data, err
		}
		base := filepath.Base(path)
		for _, dir := range dirs {
			if alt, altErr := preprocess.OSReader(filepath.Join(dir, base)); altErr == nil {
				return alt, nil
			}
		}
		return nil, err
	}
}

// headerFlags computes spec §6's flags bitfield from the final state plus
// the one option (compress_output) that contributes a bit, matching the
// original's generate_krb_binary flag computation exactly.
func headerFlags(state *ir.CompilerState, opts Options) uint16 {
	var flags uint16
	if len(state.Styles) > 0 {
		flags |= ir.FlagHasStyles
	}
	if len(state.ComponentDefs) > 0 {
		flags |= ir.FlagHasComponentDefs
	}
	if len(state.Scripts) > 0 {
		flags |= ir.FlagHasScripts
	}
	if len(state.Resources) > 0 {
		flags |= ir.FlagHasResources
	}
	if state.HasApp {
		flags |= ir.FlagHasApp
	}
	if len(state.TemplateVars) > 0 {
		flags |= ir.FlagHasTemplateVars
	}
	if len(state.TemplateBindings) > 0 {
		flags |= ir.FlagHasTemplateBindings
	}
	if len(state.Transforms) > 0 {
		flags |= ir.FlagHasTransforms
	}
	if opts.CompressOutput {
		// The flag is reserved and set here for a future decoder; no
		// compression of the payload itself is implemented, matching the
		// original implementation's own compress_output handling (it sets
		// the same bit and goes no further). See DESIGN.md.
		flags |= ir.FlagCompressed
	}
	return flags
}

// Compile runs the full pipeline over one source unit and returns the
// finished UIB bytes plus stats describing the run. No phase recovers from
// another phase's error (spec §7 policy); the first error encountered is
// returned verbatim and output is nil.
func Compile(source []byte, sourceName string, opts Options) ([]byte, Stats, error) {
	start := time.Now()
	stats := Stats{SourceSize: uint64(len(source))}

	state := ir.NewCompilerState()
	state.SourceFile = sourceName
	if opts.DebugMode {
		state.Logger = log.New(os.Stderr, "", 0)
	}
	state.Logf("Compiling %q (KRB v%d.%d)...", sourceName, ir.VersionMajor, ir.VersionMinor)

	state.Logf("Phase 0.1: processing includes...")
	reader := includeReader(source, sourceName, opts.IncludeDirectories)
	flatSource, lineMap, err := preprocess.Flat(reader, sourceName)
	if err != nil {
		return nil, stats, err
	}
	includeFiles := map[string]bool{}
	for _, lm := range lineMap {
		includeFiles[lm.File] = true
	}
	delete(includeFiles, sourceName) // count files pulled in via @include, not the root unit itself
	stats.IncludeCount = len(includeFiles)

	state.Logf("Phase 0.2: processing variables...")
	expander := vars.New(sourceName)
	expander.Seed(opts.CustomVariables)
	if err := expander.Collect(flatSource); err != nil {
		return nil, stats, err
	}
	if err := expander.Resolve(); err != nil {
		return nil, stats, err
	}
	substituted, err := expander.Substitute(flatSource)
	if err != nil {
		return nil, stats, err
	}
	stats.VariableCount = len(expander.Vars)

	state.Logf("Phase 1: parsing source...")
	astFile, err := parser.Parse(sourceName, substituted)
	if err != nil {
		return nil, stats, err
	}

	state.Logf("Phase 1.1: checking semantics...")
	if err := semantic.Check(sourceName, astFile); err != nil {
		return nil, stats, err
	}

	state.Logf("Phase 1.2: resolving style inheritance...")
	styleIDs, err := style.New(sourceName, state).Resolve(astFile.Styles)
	if err != nil {
		return nil, stats, err
	}

	state.Logf("Phase 1.3: expanding components and resolving element properties...")
	if err := component.New(sourceName, state, styleIDs).Expand(astFile); err != nil {
		return nil, stats, err
	}
	if state.MainRootIndex >= 0 {
		state.HasApp = state.Elements[state.MainRootIndex].Type == ir.ElemTypeApp
	}

	state.Logf("Phase 1.4: processing scripts...")
	if err := script.New(sourceName, state).Process(astFile.Scripts); err != nil {
		return nil, stats, err
	}
	state.Logf("Phase 1.4 complete. Elements: %d, Styles: %d, Components: %d",
		len(state.Elements), len(state.Styles), len(state.ComponentDefs))

	state.HeaderFlags = headerFlags(state, opts)

	state.Logf("Phase 2: calculating sizes...")
	if err := sizecalc.New(sourceName, state).Calculate(); err != nil {
		return nil, stats, err
	}
	if opts.DebugMode && opts.OptimizationLevel >= 2 {
		for sec := ir.Section(0); sec < ir.SectionCount; sec++ {
			state.Logf("   section %d: %d bytes at offset %d", sec, state.SectionSizes[sec], state.SectionOffsets[sec])
		}
	}

	state.Logf("Phase 3: generating binary...")
	out, err := emit.New(state).Emit()
	if err != nil {
		return nil, stats, err
	}

	if opts.MaxFileSize > 0 && uint64(len(out)) > opts.MaxFileSize {
		return nil, stats, kerr.LimitExceeded(sourceName, 0, "output size %d exceeds max_file_size %d", len(out), opts.MaxFileSize)
	}

	stats.OutputSize = uint64(len(out))
	if stats.SourceSize > 0 {
		stats.CompressionRatio = float64(stats.OutputSize) / float64(stats.SourceSize)
	}
	stats.ElementCount = len(state.Elements)
	stats.StyleCount = len(state.Styles)
	stats.ComponentCount = len(state.ComponentDefs)
	stats.ScriptCount = len(state.Scripts)
	stats.ResourceCount = len(state.Resources)
	stats.StringCount = len(state.Strings)
	stats.CompileTimeMS = time.Since(start).Milliseconds()

	state.Logf("Done: %d bytes in %dms", stats.OutputSize, stats.CompileTimeMS)
	return out, stats, nil
}

// CompileFile reads inputPath, compiles it, and writes the result to
// outputPath, removing any partial file left behind by a failed write
// (spec §7: "partial output is discarded").
func CompileFile(inputPath, outputPath string, opts Options) (Stats, error) {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return Stats{}, kerr.IOWrap(err, "cannot read input file %q", inputPath)
	}

	out, stats, err := Compile(source, inputPath, opts)
	if err != nil {
		return stats, err
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		_ = os.Remove(outputPath)
		return stats, kerr.IOWrap(err, "cannot write output file %q", outputPath)
	}
	return stats, nil
}
