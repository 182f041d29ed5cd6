package ir

import "github.com/waozixyz/kryonc/internal/kryon/kerr"

// AddString interns text into the string table, returning its 0-based index.
// Strings are deduplicated by exact byte content (spec §3 "String table");
// lookups and insertions both happen here so every phase shares one table.
func (s *CompilerState) AddString(text string) (uint8, error) {
	if idx, ok := s.stringIndex[text]; ok {
		return idx, nil
	}
	if len(s.Strings) >= MaxStrings {
		return 0, kerr.LimitExceeded(s.SourceFile, 0, "string table limit (%d) exceeded adding %q", MaxStrings, truncate(text, 40))
	}
	if len(text) > 255 {
		return 0, kerr.LimitExceeded(s.SourceFile, 0, "string %q exceeds maximum length 255 bytes", truncate(text, 40))
	}
	idx := uint8(len(s.Strings))
	s.Strings = append(s.Strings, StringEntry{Text: text, Index: idx})
	s.stringIndex[text] = idx
	return idx, nil
}

// StringAt returns the string stored at idx, or "" and false if idx is out
// of range (spec I4).
func (s *CompilerState) StringAt(idx uint8) (string, bool) {
	if int(idx) >= len(s.Strings) {
		return "", false
	}
	return s.Strings[idx].Text, true
}

// AddResource interns a resource reference by (type, path), returning its
// 0-based table index.
func (s *CompilerState) AddResource(resType uint8, path string) (uint8, error) {
	key := string(rune(resType)) + ":" + path
	if idx, ok := s.resourceIndex[key]; ok {
		return idx, nil
	}
	if len(s.Resources) >= MaxResources {
		return 0, kerr.LimitExceeded(s.SourceFile, 0, "resource table limit (%d) exceeded adding %q", MaxResources, path)
	}
	pathIdx, err := s.AddString(path)
	if err != nil {
		return 0, err
	}
	idx := uint8(len(s.Resources))
	s.Resources = append(s.Resources, ResourceEntry{
		Type:            resType,
		Format:          ResFormatExternal,
		DataStringIndex: pathIdx,
		Index:           idx,
	})
	s.resourceIndex[key] = idx
	return idx, nil
}

// AddTransform interns a parsed `transform:` value by its raw source text
// (spec §4.10 item 9, §6 emission order item 11), deduplicating repeated
// identical transform strings the way AddString/AddResource dedupe theirs.
func (s *CompilerState) AddTransform(raw string, ops []TransformOp) (uint8, error) {
	if idx, ok := s.transformIndex[raw]; ok {
		return idx, nil
	}
	if len(s.Transforms) >= MaxTransforms {
		return 0, kerr.LimitExceeded(s.SourceFile, 0, "transform table limit (%d) exceeded adding %q", MaxTransforms, truncate(raw, 40))
	}
	nameIdx, err := s.AddString(raw)
	if err != nil {
		return 0, err
	}
	size := uint32(2)
	for _, op := range ops {
		size += uint32(3 + len(op.Value))
	}
	idx := uint8(len(s.Transforms))
	s.Transforms = append(s.Transforms, TransformEntry{NameIndex: nameIdx, Ops: ops, CalculatedSize: size})
	s.transformIndex[raw] = idx
	return idx, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
