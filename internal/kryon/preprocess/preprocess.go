// Package preprocess implements the P0 phase (spec §4.1): @include
// resolution in flat mode (everything inlined into one source map'd stream)
// or isolated mode (a module graph of independently scoped files).
package preprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/waozixyz/kryonc/internal/kryon/kerr"
)

// DefaultMaxIncludeDepth matches the documented maximum in spec §4.1.
const DefaultMaxIncludeDepth = 50

// Reader loads the raw bytes of a source path. Production callers use
// OSReader; tests substitute an in-memory map so the preprocessor's include
// logic can be exercised without touching a real filesystem.
type Reader func(path string) ([]byte, error)

// OSReader reads from the real filesystem via os.ReadFile.
var OSReader Reader = os.ReadFile

// LineMapping records, for one line of flat-mode combined output, the file
// and original line number it came from (spec §4.1 "source map").
type LineMapping struct {
	File string
	Line int
}

func canonicalize(path string) string { return filepath.Clean(path) }

// contentHash combines a module's canonicalized absolute path and its byte
// content into one integrity value. Flat-mode dedup keys a module's cached
// hash by its canonical path; reaching the same canonical path again by a
// different relative-path edge re-hashes the freshly read bytes and compares
// against the cached value, catching a path being rewritten mid-compile.
// This is not a cross-run cache: nothing here is persisted to disk.
func contentHash(absPath string, data []byte) uint64 {
	buf := make([]byte, 0, len(absPath)+1+len(data))
	buf = append(buf, absPath...)
	buf = append(buf, 0)
	buf = append(buf, data...)
	return xxhash.Sum64(buf)
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// parseIncludeLine reports whether line is an @include directive and, if so,
// extracts and unescapes its quoted path. A line starting with "@include"
// that is not validly formed is an error (spec §4.1 "unterminated include
// syntax"), not silently ignored.
func parseIncludeLine(line string) (path string, isInclude bool, err error) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "@include") {
		return "", false, nil
	}
	after := strings.TrimLeft(trimmed[len("@include"):], " \t")
	if !strings.HasPrefix(after, "\"") {
		return "", true, fmt.Errorf("invalid @include syntax: path must be quoted")
	}
	rest := after[1:]
	var sb strings.Builder
	escaped := false
	closed := false
	consumed := 0
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		consumed = i + 1
		if escaped {
			switch c {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '"', '\'':
				sb.WriteByte(c)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(c)
			}
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			closed = true
			break
		}
		sb.WriteByte(c)
	}
	if !closed {
		return "", true, fmt.Errorf("invalid @include syntax: missing closing quote")
	}
	tail := strings.TrimSpace(rest[consumed:])
	if tail != "" && !strings.HasPrefix(tail, "#") && !strings.HasPrefix(tail, "//") {
		return "", true, fmt.Errorf("invalid @include syntax: unexpected content after path: %q", tail)
	}
	if sb.Len() == 0 {
		return "", true, fmt.Errorf("invalid @include syntax: path cannot be empty")
	}
	return sb.String(), true, nil
}

func resolveIncludePath(baseDir, raw string) string {
	full := raw
	if !filepath.IsAbs(raw) {
		full = filepath.Join(baseDir, raw)
	}
	return filepath.Clean(full)
}

// flatBuilder accumulates flat-mode output: the first visit of a path emits
// its content; later visits of the same path emit only a marker comment
// (spec §4.1 "content-level dedup").
type flatBuilder struct {
	read      Reader
	maxDepth  int
	emitted   map[string]bool
	hashes    map[string]uint64
	stack     map[string]bool
	out       strings.Builder
	lines     int
	sourceMap []LineMapping
}

func (b *flatBuilder) process(path string, depth int) error {
	if depth > b.maxDepth {
		return kerr.Include(path, 0, "maximum include depth (%d) exceeded processing %q", b.maxDepth, path)
	}
	canon := canonicalize(path)
	if b.stack[canon] {
		return kerr.Include(path, 0, "circular include detected: %q", path)
	}
	abs, err := filepath.Abs(canon)
	if err != nil {
		abs = canon
	}
	if b.emitted[canon] {
		data, err := b.read(path)
		if err != nil {
			return kerr.IOWrap(err, "cannot read include file %q", path)
		}
		if contentHash(abs, data) != b.hashes[canon] {
			return kerr.Include(path, 0, "include %q content changed since it was first processed", path)
		}
		b.out.WriteString(fmt.Sprintf("# include already processed: %s\n", path))
		b.lines++
		return nil
	}
	b.stack[canon] = true
	defer delete(b.stack, canon)

	data, err := b.read(path)
	if err != nil {
		return kerr.IOWrap(err, "cannot read include file %q", path)
	}
	b.emitted[canon] = true
	b.hashes[canon] = contentHash(abs, data)
	baseDir := filepath.Dir(path)

	for i, line := range splitLines(string(data)) {
		lineNum := i + 1
		incPath, isInclude, perr := parseIncludeLine(line)
		if perr != nil {
			return kerr.Include(path, lineNum, "%v", perr)
		}
		if isInclude {
			if err := b.process(resolveIncludePath(baseDir, incPath), depth+1); err != nil {
				return err
			}
			continue
		}
		b.sourceMap = append(b.sourceMap, LineMapping{File: path, Line: lineNum})
		b.out.WriteString(line)
		b.out.WriteByte('\n')
		b.lines++
	}
	return nil
}

// Flat resolves every @include reachable from rootPath into one combined
// source string, returning a parallel source map for error reporting.
func Flat(read Reader, rootPath string) (string, []LineMapping, error) {
	b := &flatBuilder{read: read, maxDepth: DefaultMaxIncludeDepth, emitted: map[string]bool{}, hashes: map[string]uint64{}, stack: map[string]bool{}}
	if err := b.process(rootPath, 0); err != nil {
		return "", nil, err
	}
	return b.out.String(), b.sourceMap, nil
}

// Module is one node of an isolated-mode module graph: a canonicalised path
// with its own include-stripped content and the canonical paths it imports,
// in import order (spec §4.1 "isolated mode").
type Module struct {
	Path    string
	Content string
	Imports []string
}

// Graph is a topologically sorted module graph: Order lists canonical paths
// dependency-first, so compiling them in Order order always sees a module's
// imports before the module itself.
type Graph struct {
	Root    string
	Modules map[string]*Module
	Order   []string
}

type isoBuilder struct {
	read     Reader
	maxDepth int
	modules  map[string]*Module
	stack    map[string]bool
	order    []string
}

func (b *isoBuilder) build(path string, depth int) error {
	canon := canonicalize(path)
	if _, ok := b.modules[canon]; ok {
		return nil
	}
	if depth > b.maxDepth {
		return kerr.Include(path, 0, "maximum include depth (%d) exceeded processing %q", b.maxDepth, path)
	}
	if b.stack[canon] {
		return kerr.Include(path, 0, "circular include detected: %q", path)
	}
	b.stack[canon] = true
	defer delete(b.stack, canon)

	data, err := b.read(path)
	if err != nil {
		return kerr.IOWrap(err, "cannot read include file %q", path)
	}
	baseDir := filepath.Dir(path)

	var out strings.Builder
	var imports []string
	for i, line := range splitLines(string(data)) {
		lineNum := i + 1
		incPath, isInclude, perr := parseIncludeLine(line)
		if perr != nil {
			return kerr.Include(path, lineNum, "%v", perr)
		}
		if isInclude {
			full := resolveIncludePath(baseDir, incPath)
			if err := b.build(full, depth+1); err != nil {
				return err
			}
			imports = append(imports, canonicalize(full))
			out.WriteString(fmt.Sprintf("# include processed: %s\n", incPath))
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	b.modules[canon] = &Module{Path: canon, Content: out.String(), Imports: imports}
	b.order = append(b.order, canon)
	return nil
}

// Isolated builds a module graph rooted at rootPath, each module retaining
// its own content scope with @include lines stripped (spec §4.1).
func Isolated(read Reader, rootPath string) (*Graph, error) {
	b := &isoBuilder{read: read, maxDepth: DefaultMaxIncludeDepth, modules: map[string]*Module{}, stack: map[string]bool{}}
	if err := b.build(rootPath, 0); err != nil {
		return nil, err
	}
	return &Graph{Root: canonicalize(rootPath), Modules: b.modules, Order: b.order}, nil
}
