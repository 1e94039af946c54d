package flat

import (
	"fmt"
	"slices"

	"github.com/jacoelho/morph/internal/pathkey"
	"github.com/jacoelho/morph/internal/shape"
)

type containerKind uint8

const (
	kindNone containerKind = iota
	kindMapping
	kindSequence
)

// node is one prefix of the flat keys being rebuilt.
type node struct {
	path   string
	leaf   bool
	value  any
	kind   containerKind
	fields map[string]*node
	items  map[int]*node
}

// UnflattenValue unflattens v after checking that it is mapping-shaped.
func UnflattenValue(v any) (map[string]any, error) {
	m, ok := shape.AsMapping(v)
	if !ok {
		return nil, fmt.Errorf("%w, not %T", ErrNotAMapping, v)
	}
	return Unflatten(m)
}

// Unflatten rebuilds the nested structure encoded by a flat mapping. Keys are
// processed in sorted order so that the reported conflict is deterministic.
// Sequence indices only establish relative order: {"a[5]": x, "a[2]": y}
// becomes {"a": [y, x]}.
func Unflatten(flat map[string]any) (map[string]any, error) {
	root := &node{kind: kindMapping, fields: make(map[string]*node)}

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		segments, err := pathkey.Parse(key)
		if err != nil {
			return nil, err
		}
		if err := root.insert(segments, flat[key]); err != nil {
			return nil, err
		}
	}

	return root.buildMapping(), nil
}

func (n *node) insert(segments []pathkey.Segment, value any) error {
	current := n
	for depth, segment := range segments {
		child, err := current.child(segment, depth == 0)
		if err != nil {
			return err
		}
		current = child
	}

	if current.leaf {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, current.path)
	}
	if current.kind != kindNone {
		return fmt.Errorf("%w for prefix: %s", ErrConflictingScalarAndStructure, current.path)
	}

	current.leaf = true
	current.value = value
	return nil
}

func (n *node) child(segment pathkey.Segment, top bool) (*node, error) {
	if n.leaf {
		return nil, fmt.Errorf("%w for prefix: %s", ErrConflictingScalarAndStructure, n.path)
	}

	path := n.path + segment.String()
	if top {
		path = segment.Name()
	}

	switch segment.Kind() {
	case pathkey.KindIndex:
		if n.kind == kindMapping {
			return nil, fmt.Errorf("%w for prefix: %s", ErrConflictingListAndMapping, n.path)
		}
		if n.kind == kindNone {
			n.kind = kindSequence
			n.items = make(map[int]*node)
		}
		child, ok := n.items[segment.Index()]
		if !ok {
			child = &node{path: path}
			n.items[segment.Index()] = child
		}
		return child, nil
	default:
		if n.kind == kindSequence {
			return nil, fmt.Errorf("%w for prefix: %s", ErrConflictingListAndMapping, n.path)
		}
		if n.kind == kindNone {
			n.kind = kindMapping
			n.fields = make(map[string]*node)
		}
		child, ok := n.fields[segment.Name()]
		if !ok {
			child = &node{path: path}
			n.fields[segment.Name()] = child
		}
		return child, nil
	}
}

func (n *node) build() any {
	switch {
	case n.leaf:
		return n.value
	case n.kind == kindSequence:
		return n.buildSequence()
	default:
		return n.buildMapping()
	}
}

func (n *node) buildMapping() map[string]any {
	out := make(map[string]any, len(n.fields))
	for name, child := range n.fields {
		out[name] = child.build()
	}
	return out
}

func (n *node) buildSequence() []any {
	indices := make([]int, 0, len(n.items))
	for index := range n.items {
		indices = append(indices, index)
	}
	slices.Sort(indices)

	out := make([]any, 0, len(indices))
	for _, index := range indices {
		out = append(out, n.items[index].build())
	}
	return out
}
