// Package script implements P7 (spec §4.8): turning each parsed script or
// function node into an ir.ScriptEntry — picking a storage mode, extracting
// entry-point function names from inline bodies with a per-language regex,
// and running a minimal bracket-balance check.
//
// Variable substitution inside script bodies (spec §4.8 "substitute
// variables in the body") already happened in internal/kryon/vars: that
// phase runs over the whole raw source text before lexing, script bodies
// included, so by the time a *ast.ScriptNode reaches this package its Name
// and Body text are already final. This package has nothing left to
// substitute.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
)

// entryPointPatterns implements spec §4.8's exact scan rule: "function
// NAME(" for lua/js/wren, "def NAME(" for python. This intentionally
// departs from the original Rust compiler, whose Wren pattern instead
// matched bare `name(...) {` method syntax — spec.md states the rule
// explicitly, so it wins over the original where the two disagree.
var entryPointPatterns = map[uint8]*regexp.Regexp{
	ir.ScriptLangLua:        regexp.MustCompile(`function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
	ir.ScriptLangJavaScript: regexp.MustCompile(`function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
	ir.ScriptLangWren:       regexp.MustCompile(`function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
	ir.ScriptLangPython:     regexp.MustCompile(`def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
}

// lineCommentMarkers names the token that starts a line comment in each
// language that gets bracket validation (python is skipped entirely, so it
// has no entry here).
var lineCommentMarkers = map[uint8]string{
	ir.ScriptLangLua:        "--",
	ir.ScriptLangJavaScript: "//",
	ir.ScriptLangWren:       "//",
}

// Processor converts parsed script nodes into ir.ScriptEntry records,
// interning names, entry points, and (for external scripts) resource paths
// into the shared CompilerState.
type Processor struct {
	file  string
	state *ir.CompilerState
}

func New(file string, state *ir.CompilerState) *Processor {
	return &Processor{file: file, state: state}
}

// Process converts every node in nodes, in order, appending one
// ir.ScriptEntry to state.Scripts per node.
func (p *Processor) Process(nodes []*ast.ScriptNode) error {
	for _, n := range nodes {
		entry, err := p.processOne(n)
		if err != nil {
			return err
		}
		p.state.Scripts = append(p.state.Scripts, *entry)
	}
	return nil
}

func (p *Processor) processOne(n *ast.ScriptNode) (*ir.ScriptEntry, error) {
	lang, ok := ir.ScriptLangByName[strings.ToLower(n.Language)]
	if !ok {
		return nil, kerr.Script(p.file, n.Pos.Line, "unsupported script language %q", n.Language)
	}

	var nameIdx uint8
	if n.Name != "" {
		idx, err := p.state.AddString(n.Name)
		if err != nil {
			return nil, err
		}
		nameIdx = idx
	}

	entry := &ir.ScriptEntry{Language: lang, NameIndex: nameIdx}

	if n.Mode == "external" {
		if n.From == "" {
			return nil, kerr.Script(p.file, n.Pos.Line, "external script %q has no 'from' path", n.Name)
		}
		resIdx, err := p.state.AddResource(ir.ResTypeScript, n.From)
		if err != nil {
			return nil, err
		}
		entry.StorageMode = ir.ScriptStorageExternal
		entry.ResourceIdx = resIdx
		// Entry points in an external script are resolved at runtime (spec
		// §4.8): "entry points are left empty".
		return entry, nil
	}

	if err := validateBrackets(lang, n.Body); err != nil {
		return nil, kerr.Script(p.file, n.Pos.Line, "%v", err)
	}

	names := extractEntryPoints(lang, n.Body)
	entryPoints := make([]uint8, 0, len(names))
	for _, name := range names {
		idx, err := p.state.AddString(name)
		if err != nil {
			return nil, err
		}
		entryPoints = append(entryPoints, idx)
	}

	entry.StorageMode = ir.ScriptStorageInline
	entry.EntryPoints = entryPoints
	entry.InlineCode = []byte(n.Body)
	return entry, nil
}

// extractEntryPoints scans code for every unique function-declaration match
// of lang's pattern, in first-appearance order (spec §4.8 "each unique
// function name becomes an entry point").
func extractEntryPoints(lang uint8, code string) []string {
	re, ok := entryPointPatterns[lang]
	if !ok {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, m := range re.FindAllStringSubmatch(code, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// validateBrackets performs the "minimal bracket-balance validation for
// lua/js/wren" spec §4.8 calls for: every (), {}, [] must close, tracked
// line by line with double-quoted strings and line comments skipped so a
// bracket character inside either doesn't count. Python is never checked
// (spec §4.8 names only lua/js/wren), matching the original's "Python
// syntax validation is more complex due to indentation; accept any code".
func validateBrackets(lang uint8, code string) error {
	marker, ok := lineCommentMarkers[lang]
	if !ok {
		return nil
	}

	var parens, braces, brackets int
	for _, line := range strings.Split(code, "\n") {
		inString := false
		runes := []rune(line)
		for i := 0; i < len(runes); i++ {
			if !inString && strings.HasPrefix(string(runes[i:]), marker) {
				break
			}
			ch := runes[i]
			if inString {
				if ch == '"' && (i == 0 || runes[i-1] != '\\') {
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '(':
				parens++
			case ')':
				parens--
			case '{':
				braces++
			case '}':
				braces--
			case '[':
				brackets++
			case ']':
				brackets--
			}
			if parens < 0 || braces < 0 || brackets < 0 {
				return unbalancedError(lang)
			}
		}
	}
	if parens != 0 || braces != 0 || brackets != 0 {
		return unbalancedError(lang)
	}
	return nil
}

func unbalancedError(lang uint8) error {
	name := "script"
	for n, id := range ir.ScriptLangByName {
		if id == lang {
			name = n
		}
	}
	return fmt.Errorf("unmatched brackets in %s script", name)
}
