// Package semantic implements P4 (spec §4.5): validating every reference an
// ast.File makes — element types, style names, extends targets,
// pseudo-selector states, script languages, and property names — before any
// later phase trusts them.
package semantic

import (
	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
)

// Check validates f, returning the first violation found. It does not
// mutate f or build any compiler state — that is style/component/lower's
// job once references are known to be valid.
func Check(file string, f *ast.File) error {
	c := &checker{file: file, componentNames: map[string]bool{}, styleNames: map[string]bool{}}
	for _, cd := range f.Components {
		c.componentNames[cd.Name] = true
	}
	for _, sb := range f.Styles {
		c.styleNames[sb.Name] = true
	}

	for _, sn := range f.Scripts {
		if _, ok := ir.ScriptLangByName[sn.Language]; !ok {
			return kerr.Script(file, sn.Pos.Line, "unknown script language %q", sn.Language)
		}
	}

	for _, sb := range f.Styles {
		for _, base := range sb.Extends {
			if base == sb.Name {
				return kerr.Style(file, sb.Pos.Line, "style %q cannot extend itself", sb.Name)
			}
			if !c.styleNames[base] {
				return kerr.Style(file, sb.Pos.Line, "style %q extends unknown style %q", sb.Name, base)
			}
		}
		if err := c.checkProperties(sb.Properties); err != nil {
			return err
		}
		if err := c.checkPseudo(sb.Pseudo); err != nil {
			return err
		}
	}

	for _, cd := range f.Components {
		if err := c.checkElement(cd.Template); err != nil {
			return err
		}
	}

	if f.Root != nil {
		if err := c.checkElement(f.Root); err != nil {
			return err
		}
	}
	return nil
}

type checker struct {
	file           string
	componentNames map[string]bool
	styleNames     map[string]bool
}

func (c *checker) checkElement(el *ast.Element) error {
	if _, known := ir.ElementTypeByName[el.TypeName]; !known && !c.componentNames[el.TypeName] {
		return kerr.Semantic(c.file, el.Pos.Line, "unknown element type or component %q", el.TypeName)
	}
	if err := c.checkProperties(el.Properties); err != nil {
		return err
	}
	if err := c.checkPseudo(el.Pseudo); err != nil {
		return err
	}
	for _, child := range el.Children {
		if err := c.checkElement(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkPseudo(blocks []ast.PseudoBlock) error {
	for _, pb := range blocks {
		if _, ok := ir.StateByName[pb.State]; !ok {
			return kerr.Semantic(c.file, pb.Pos.Line, "unknown pseudo-selector state %q", pb.State)
		}
		if err := c.checkProperties(pb.Properties); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkProperties(props []ast.Property) error {
	for _, p := range props {
		if err := c.checkProperty(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkProperty(p ast.Property) error {
	if ir.IsRejectedPropertyName(p.Key) {
		return kerr.Semantic(c.file, p.Pos.Line,
			"property %q collides with 'shadow' in the original property table; use 'shadow:' instead", p.Key)
	}
	if p.Key == "style" {
		name, ok := stringValue(p.Value)
		if !ok {
			return kerr.Semantic(c.file, p.Pos.Line, "'style' property must be a string naming a defined style")
		}
		if !c.styleNames[name] {
			return kerr.Semantic(c.file, p.Pos.Line, "unknown style %q", name)
		}
	}
	// Names outside PropertyIDByName are not rejected here: spec §4.5
	// classifies them as custom properties rather than errors, matching
	// the original's from_name fallback to a single CustomData id.
	return nil
}

func stringValue(v ast.Value) (string, bool) {
	if v.Kind != ast.ValString && v.Kind != ast.ValIdent {
		return "", false
	}
	return v.Raw, true
}
