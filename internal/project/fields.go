package project

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// entry is one key of a source mapping. For recognised keys the value is the
// original node, kept so unchanged scalars can be written back verbatim.
type entry struct {
	key   *yaml.Node
	value *yaml.Node
	known bool
}

// fields records the source mapping a value was decoded from.
type fields struct {
	src     *yaml.Node
	entries []entry
	merged  map[string]*yaml.Node // recognised keys supplied only by a "<<" merge
}

// Extra returns the value node of an unrecognised key, or nil.
func (f *fields) Extra(key string) *yaml.Node {
	for _, e := range f.entries {
		if !e.known && e.key.Value == key {
			return e.value
		}
	}
	return nil
}

// ExtraKeys returns the unrecognised keys in source order.
func (f *fields) ExtraKeys() []string {
	var keys []string
	for _, e := range f.entries {
		if !e.known {
			keys = append(keys, e.key.Value)
		}
	}
	return keys
}

// decodeMapping walks a mapping node in order. decode reports whether a key
// is recognised; unrecognised keys are kept as they are. Keys pulled in by a
// "<<" merge are decoded too, with explicit keys taking precedence, but the
// merge entry itself is kept verbatim.
func (f *fields) decodeMapping(node *yaml.Node, what string, decode func(key string, value *yaml.Node) (bool, error)) error {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s must be a mapping", node.Line, what)
	}

	f.src = node
	f.entries = make([]entry, 0, len(node.Content)/2)
	f.merged = nil

	explicit := make(map[string]bool, len(node.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if isMergeKey(k) {
			// The encoder writes an explicit !!merge tag otherwise.
			k.Tag = ""
			merges = append(merges, v)
			f.entries = append(f.entries, entry{key: k, value: v})
			continue
		}
		explicit[k.Value] = true
		known, err := decode(k.Value, v)
		if err != nil {
			return fmt.Errorf("line %d: %s field %q: %w", v.Line, what, k.Value, err)
		}
		f.entries = append(f.entries, entry{key: k, value: v, known: known})
	}

	for _, m := range merges {
		for _, src := range mergeSources(m) {
			for i := 0; i+1 < len(src.Content); i += 2 {
				k, v := src.Content[i], src.Content[i+1]
				if explicit[k.Value] {
					continue
				}
				explicit[k.Value] = true
				known, err := decode(k.Value, v)
				if err != nil {
					return fmt.Errorf("line %d: %s field %q: %w", v.Line, what, k.Value, err)
				}
				if known {
					if f.merged == nil {
						f.merged = make(map[string]*yaml.Node)
					}
					f.merged[k.Value] = v
				}
			}
		}
	}
	return nil
}

// encodeMapping rebuilds the mapping in source order. value returns the node
// for a recognised key (orig is nil when the key was not in the source) or
// nil to omit it. Recognised keys missing from the source are appended in
// the order of want; for keys supplied by a merge orig is the merged value.
// When nothing changed the source node itself is returned.
func (f *fields) encodeMapping(want []string, value func(key string, orig *yaml.Node) (*yaml.Node, error)) (*yaml.Node, error) {
	content := make([]*yaml.Node, 0, 2*(len(f.entries)+len(want)))

	seen := make(map[string]bool, len(want))
	for _, e := range f.entries {
		v := e.value
		if e.known {
			seen[e.key.Value] = true
			n, err := value(e.key.Value, e.value)
			if err != nil {
				return nil, err
			}
			if n == nil {
				continue
			}
			v = n
		}
		content = append(content, e.key, v)
	}

	for _, k := range want {
		if seen[k] {
			continue
		}
		orig := f.merged[k]
		n, err := value(k, orig)
		if err != nil {
			return nil, err
		}
		// Merged values are only written out once they differ.
		if n == nil || (orig != nil && n == orig) {
			continue
		}
		if orig != nil {
			n.Anchor = ""
		}
		content = append(content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, n)
	}

	if f.src != nil && sameNodes(content, f.src.Content) {
		return f.src, nil
	}

	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if f.src != nil {
		cp := *f.src
		out = &cp
	}
	out.Content = content

	// A flow mapping that gained keys is easier to read as a block.
	if len(out.Content) > 0 && f.src != nil && len(f.src.Content) == 0 {
		out.Style &^= yaml.FlowStyle
	}
	return out, nil
}

// scalar encodes v, returning orig instead when it already holds (or aliases)
// the same value so quoting style and comments are kept.
func scalar(orig *yaml.Node, v any) (*yaml.Node, error) {
	n := new(yaml.Node)
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	if o := deref(orig); o != nil && o.Kind == yaml.ScalarNode && o.ShortTag() == n.ShortTag() && o.Value == n.Value {
		return orig, nil
	}
	return n, nil
}

// sequence wraps items in a sequence node styled like orig. Items that are
// unchanged source mappings are written back as they appeared in orig, so
// aliases stay aliases; orig itself is returned when no item changed.
func sequence(orig *yaml.Node, items []*yaml.Node) *yaml.Node {
	base := deref(orig)
	if base == nil || base.Kind != yaml.SequenceNode {
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
	}

	for i, item := range items {
		if i >= len(base.Content) {
			break
		}
		prev := base.Content[i]
		switch {
		case deref(prev) == item:
			items[i] = prev
		case prev.Kind == yaml.AliasNode && item.Anchor != "":
			// A changed copy of an aliased entry must not redefine the anchor.
			item.Anchor = ""
		}
	}
	if sameNodes(items, base.Content) {
		return orig
	}

	cp := *base
	out := &cp
	out.Anchor = ""
	if orig == base {
		out.Anchor = base.Anchor
	}
	if len(base.Content) == 0 {
		out.Style &^= yaml.FlowStyle
	}
	out.Content = items
	return out
}

// deref follows an alias to the node it refers to.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && n.Style == 0 &&
		(n.Tag == "" || n.Tag == "!!merge" || n.Tag == "tag:yaml.org,2002:merge")
}

// mergeSources returns the mappings a "<<" value refers to, in the order
// they take precedence.
func mergeSources(v *yaml.Node) []*yaml.Node {
	v = deref(v)
	switch v.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{v}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range v.Content {
			if m := deref(item); m.Kind == yaml.MappingNode {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func sameNodes(a, b []*yaml.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
