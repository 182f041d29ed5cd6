// Package vars implements the P1 variable expander (spec §4.4): collecting
// @variables blocks, resolving inter-variable references, and substituting
// $name occurrences through the rest of the source text.
package vars

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/waozixyz/kryonc/internal/kryon/kerr"
)

var refPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// Value is one variable's definition and (once resolved) literal value.
type Value struct {
	Raw      string
	Resolved string
	DefLine  int

	resolved   bool
	resolving  bool
	fromCaller bool
}

// Expander collects and resolves one file's variable set.
type Expander struct {
	Vars map[string]*Value
	file string
}

// New returns an Expander attributing errors to file.
func New(file string) *Expander {
	return &Expander{Vars: make(map[string]*Value), file: file}
}

// Seed installs caller-supplied variables as already resolved, before the
// file's own @variables block is collected. Per the caller-wins policy
// (DESIGN.md Open Question a, grounded on the original compiler's
// compile_source_with_options), Collect will not let a same-named
// file-level definition override one seeded here.
func (e *Expander) Seed(overrides map[string]string) {
	for name, val := range overrides {
		e.Vars[name] = &Value{Raw: val, Resolved: val, resolved: true, fromCaller: true}
	}
}

// Collect scans source for @variables { name: value ... } blocks in file
// order; a later file-level definition of the same name overrides an
// earlier file-level one, but never a caller-seeded one.
func (e *Expander) Collect(source string) error {
	scanner := bufio.NewScanner(strings.NewReader(source))
	inBlock := false
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		trimmed := stripTrailingComment(strings.TrimSpace(scanner.Text()))
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		if trimmed == "@variables {" {
			if inBlock {
				return kerr.Variable(e.file, lineNum, "nested @variables blocks are not allowed")
			}
			inBlock = true
			continue
		}
		if trimmed == "}" {
			inBlock = false
			continue
		}
		if !inBlock || trimmed == "" {
			continue
		}

		parts := strings.SplitN(trimmed, ":", 2)
		if len(parts) != 2 {
			return kerr.Variable(e.file, lineNum, "invalid variable definition %q, expected 'name: value'", trimmed)
		}
		name := strings.TrimSpace(parts[0])
		raw := strings.TrimSpace(parts[1])
		if !isValidIdentifier(name) {
			return kerr.Variable(e.file, lineNum, "invalid variable name %q", name)
		}
		if existing, ok := e.Vars[name]; ok && existing.fromCaller {
			continue
		}
		e.Vars[name] = &Value{Raw: raw, DefLine: lineNum}
	}
	return scanner.Err()
}

// Resolve resolves every collected variable's final literal value,
// following $name references between variables and failing on cycles.
func (e *Expander) Resolve() error {
	for name := range e.Vars {
		if !e.Vars[name].resolved {
			if _, err := e.resolveOne(name, map[string]bool{}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Expander) resolveOne(name string, visiting map[string]bool) (string, error) {
	v, ok := e.Vars[name]
	if !ok {
		return "", kerr.Variable(e.file, 0, "undefined variable '$%s'", name)
	}
	if v.resolved {
		return v.Resolved, nil
	}
	if v.resolving || visiting[name] {
		return "", kerr.Variable(e.file, v.DefLine, "cyclic variable definition detected for '$%s'", name)
	}
	v.resolving = true
	visiting[name] = true

	current := v.Raw
	for _, m := range refPattern.FindAllStringSubmatch(current, -1) {
		ref := m[1]
		resolved, err := e.resolveOne(ref, visiting)
		if err != nil {
			return "", kerr.Variable(e.file, v.DefLine, "in variable '$%s': %v", name, err)
		}
		current = strings.ReplaceAll(current, "$"+ref, resolved)
	}

	v.Resolved = current
	v.resolved = true
	v.resolving = false
	delete(visiting, name)
	return v.Resolved, nil
}

// Substitute removes @variables blocks and replaces $name with its resolved
// value everywhere else, except inside `Define ... { ... }` bodies: those
// contain component-template $propname placeholders bound later by the
// component expander (P6), not file variables, so they are left untouched
// here (see DESIGN.md).
func (e *Expander) Substitute(source string) (string, error) {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNum := 0
	inBlock := false
	defineDepth := 0
	var undefined []string

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "@variables {" {
			inBlock = true
			continue
		}
		if inBlock {
			if trimmed == "}" {
				inBlock = false
			}
			continue
		}

		if defineDepth == 0 && strings.HasPrefix(trimmed, "Define ") && strings.HasSuffix(trimmed, "{") {
			defineDepth = 1
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		if defineDepth > 0 {
			defineDepth += braceDelta(trimmed)
			out.WriteString(line)
			out.WriteByte('\n')
			if defineDepth < 0 {
				defineDepth = 0
			}
			continue
		}

		substituted := refPattern.ReplaceAllStringFunc(line, func(match string) string {
			name := match[1:]
			v, ok := e.Vars[name]
			if !ok || !v.resolved {
				undefined = append(undefined, fmt.Sprintf("%s:%d: undefined variable '$%s' used", e.file, lineNum, name))
				return match
			}
			return v.Resolved
		})
		out.WriteString(substituted)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(undefined) > 0 {
		return "", kerr.Variable(e.file, 0, strings.Join(undefined, "; "))
	}
	return out.String(), nil
}

func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// stripTrailingComment removes a trailing #... or //... comment that starts
// outside of a quoted string. A '#' followed by a hex digit is a color
// literal, as in the lexer, not a comment.
func stripTrailingComment(line string) string {
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if c == '#' {
			if i+1 < len(line) && strings.IndexByte("0123456789abcdefABCDEF", line[i+1]) >= 0 {
				continue
			}
			return strings.TrimSpace(line[:i])
		}
		if c == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

// braceDelta counts unquoted '{' minus '}' occurrences in line, used to
// track how deep Substitute is inside a skipped Define block.
func braceDelta(line string) int {
	delta := 0
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		switch c {
		case '{':
			delta++
		case '}':
			delta--
		}
	}
	return delta
}
