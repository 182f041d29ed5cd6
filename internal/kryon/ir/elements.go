package ir

import "github.com/waozixyz/kryonc/internal/kryon/kerr"

// NewElement appends a fresh element to the state and returns its index.
// parentIndex is -1 for a tree root (main or template).
func (s *CompilerState) NewElement(elemType uint8, parentIndex int, file string, line int, sourceName string) (int, error) {
	if len(s.Elements) >= MaxElements {
		return 0, kerr.LimitExceeded(file, line, "element limit (%d) exceeded", MaxElements)
	}
	idx := len(s.Elements)
	s.Elements = append(s.Elements, Element{
		Type:        elemType,
		ParentIndex: parentIndex,
		SelfIndex:   idx,
		SourceFile:  file,
		SourceLine:  line,
		SourceName:  sourceName,
	})
	return idx, nil
}

// AddProperty appends a standard property to the element at idx.
func (s *CompilerState) AddProperty(elemIdx int, p Property) error {
	el := &s.Elements[elemIdx]
	if len(el.Properties) >= MaxProperties {
		return kerr.LimitExceeded(el.SourceFile, el.SourceLine, "property limit (%d) exceeded for element %q", MaxProperties, el.SourceName)
	}
	if len(p.Value) > 255 {
		return kerr.Codegen("property 0x%02X value size %d exceeds 255 bytes", p.ID, len(p.Value))
	}
	el.Properties = append(el.Properties, p)
	return nil
}

// AddCustomProperty appends a custom (non-standard) property.
func (s *CompilerState) AddCustomProperty(elemIdx int, p CustomProperty) error {
	el := &s.Elements[elemIdx]
	if len(el.CustomProperties) >= MaxCustomProperties {
		return kerr.LimitExceeded(el.SourceFile, el.SourceLine, "custom property limit (%d) exceeded for element %q", MaxCustomProperties, el.SourceName)
	}
	el.CustomProperties = append(el.CustomProperties, p)
	return nil
}

// AddChild links child (an element index) onto parent (an element index) in
// both directions: parent.Children and, implicitly, child.ParentIndex, which
// must already have been set to parent when the child element was created.
func (s *CompilerState) AddChild(parentIdx, childIdx int) error {
	parent := &s.Elements[parentIdx]
	if len(parent.Children) >= MaxChildren {
		return kerr.LimitExceeded(parent.SourceFile, parent.SourceLine, "child limit (%d) exceeded for element %q", MaxChildren, parent.SourceName)
	}
	parent.Children = append(parent.Children, childIdx)
	return nil
}

// NonDefinitionRootElements returns, in flat-array order, the indices of
// every element that is not part of a component-template subtree (root or
// descendant) — i.e. the elements that belong to the main tree and must be counted/emitted in the
// main element section (spec I6, P8 in spec §8).
func (s *CompilerState) NonDefinitionRootElements() []int {
	var out []int
	for i := range s.Elements {
		if !s.Elements[i].IsTemplateElement {
			out = append(out, i)
		}
	}
	return out
}
