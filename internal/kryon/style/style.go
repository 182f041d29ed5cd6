// Package style implements P5 (spec §4.6): resolving `extends` chains into
// flat, typed property lists via a Kahn topological sort over the style
// dependency graph, one pass per pseudo-selector state.
package style

import (
	"sort"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/ir"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
	"github.com/waozixyz/kryonc/internal/kryon/lower"
)

// Resolver resolves every style.StyleBlock in a file into ir.StyleEntry
// records, caching resolved property lists by name so a style referenced as
// a base by several others is only converted once (spec §4.6 "Cache
// resolved property lists by style name to short-circuit re-resolution").
type Resolver struct {
	file    string
	state   *ir.CompilerState
	lower   *lower.Converter
	blocks  map[string]*ast.StyleBlock
	order   []string // declaration order, for deterministic fallback iteration
	entries map[string]*ir.StyleEntry
	nextID  uint8
}

func New(file string, state *ir.CompilerState) *Resolver {
	return &Resolver{
		file:    file,
		state:   state,
		lower:   lower.New(state),
		blocks:  map[string]*ast.StyleBlock{},
		entries: map[string]*ir.StyleEntry{},
		nextID:  1,
	}
}

// Resolve resolves every style block in blocks and appends the resulting
// ir.StyleEntry records to the Resolver's CompilerState in topological
// order, returning a lookup from style name to its assigned StyleEntry.ID.
func (r *Resolver) Resolve(blocks []*ast.StyleBlock) (map[string]uint8, error) {
	for _, sb := range blocks {
		r.blocks[sb.Name] = sb
		r.order = append(r.order, sb.Name)
	}

	sorted, err := r.topoSort()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uint8, len(sorted))
	for _, name := range sorted {
		entry, err := r.resolveOne(name)
		if err != nil {
			return nil, err
		}
		ids[name] = entry.ID
	}
	return ids, nil
}

// topoSort performs Kahn's algorithm over the extends graph (spec §4.6):
// nodes are style names, edges point from a style to each base it extends.
// A base must be visited (emitted) before any style that extends it, so the
// edge direction used for in-degree counting runs base -> dependent.
func (r *Resolver) topoSort() ([]string, error) {
	inDegree := map[string]int{}
	dependents := map[string][]string{}
	for _, name := range r.order {
		if _, ok := inDegree[name]; !ok {
			inDegree[name] = 0
		}
		sb := r.blocks[name]
		for _, base := range sb.Extends {
			if _, known := r.blocks[base]; !known {
				return nil, kerr.Style(r.file, sb.Pos.Line, "style %q extends unknown style %q", name, base)
			}
			inDegree[name]++
			dependents[base] = append(dependents[base], name)
		}
	}

	var queue []string
	for _, name := range r.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		sorted = append(sorted, n)
		for _, dep := range dependents[n] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(sorted) < len(r.order) {
		var stuck []string
		for _, name := range r.order {
			if inDegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, kerr.Style(r.file, 0, "cyclic style inheritance detected among styles: %v", stuck)
	}
	return sorted, nil
}

// resolveOne converts one style's own properties and merges them over its
// already-resolved bases (spec §4.6 "iterate base styles in listed order,
// inserting (or overwriting) their resolved properties; then iterate own
// source properties ... inserting (overwriting bases)"). Bases are
// guaranteed already resolved by topoSort's ordering.
func (r *Resolver) resolveOne(name string) (*ir.StyleEntry, error) {
	if entry, ok := r.entries[name]; ok {
		return entry, nil
	}
	sb := r.blocks[name]

	nameIdx, err := r.state.AddString(sb.Name)
	if err != nil {
		return nil, err
	}

	entry := &ir.StyleEntry{
		ID:        r.nextID,
		Name:      sb.Name,
		NameIndex: nameIdx,
		Extends:   append([]string(nil), sb.Extends...),
	}
	r.nextID++

	merged := map[uint8]ir.Property{}
	for _, base := range sb.Extends {
		baseEntry := r.entries[base]
		for _, p := range baseEntry.Properties {
			merged[p.ID] = p
		}
	}
	if err := r.mergeOwnProperties(sb.Properties, merged); err != nil {
		return nil, err
	}
	entry.Properties = orderedValues(merged)

	if err := r.resolvePseudo(sb, entry); err != nil {
		return nil, err
	}
	entry.Resolved = true

	r.entries[name] = entry
	r.state.Styles = append(r.state.Styles, *entry)
	return entry, nil
}

// mergeOwnProperties converts props into typed ir.Property values via the
// shared lower.Converter and inserts them into merged, overwriting anything
// already present for that property id (own properties win over bases).
func (r *Resolver) mergeOwnProperties(props []ast.Property, merged map[uint8]ir.Property) error {
	for _, p := range props {
		if p.Key == "extends" {
			continue
		}
		conv, custom, err := r.lower.Convert(r.file, p.Key, p.Value, p.Pos.Line)
		if err != nil {
			return err
		}
		if custom != nil {
			// Custom style properties have no stable property id to key the
			// merge map by, and ir.StyleEntry has no custom-property list:
			// they are not carried into the resolved style.
			continue
		}
		merged[conv.ID] = *conv
	}
	return nil
}

// resolvePseudo resolves each pseudo-state's property set independently of
// the base style (spec §4.6 "Overrides semantics": "base's same-state set
// is merged first, then the style's own same-state set").
func (r *Resolver) resolvePseudo(sb *ast.StyleBlock, entry *ir.StyleEntry) error {
	baseStates := map[uint8]map[uint8]ir.Property{}
	for _, base := range sb.Extends {
		baseEntry := r.entries[base]
		for _, sps := range baseEntry.States {
			dst, ok := baseStates[sps.StateFlags]
			if !ok {
				dst = map[uint8]ir.Property{}
				baseStates[sps.StateFlags] = dst
			}
			for _, p := range sps.Properties {
				dst[p.ID] = p
			}
		}
	}

	order := pseudoOrder(sb.Pseudo)
	for _, flags := range order {
		merged := map[uint8]ir.Property{}
		for id, p := range baseStates[flags] {
			merged[id] = p
		}
		for _, pb := range sb.Pseudo {
			f, ok := ir.StateByName[pb.State]
			if !ok || f != flags {
				continue
			}
			if err := r.mergeOwnProperties(pb.Properties, merged); err != nil {
				return err
			}
		}
		entry.States = append(entry.States, ir.StatePropertySet{
			StateFlags: flags,
			Properties: orderedValues(merged),
		})
	}
	return nil
}

// pseudoOrder returns the distinct state flag values referenced in blocks,
// in first-appearance order, so StatePropertySet output is deterministic.
func pseudoOrder(blocks []ast.PseudoBlock) []uint8 {
	var order []uint8
	seen := map[uint8]bool{}
	for _, pb := range blocks {
		f, ok := ir.StateByName[pb.State]
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		order = append(order, f)
	}
	return order
}

// orderedValues returns m's values sorted by property id (spec §4.6 "The
// final value list is the map's values in property-id order").
func orderedValues(m map[uint8]ir.Property) []ir.Property {
	ids := make([]uint8, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]ir.Property, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
