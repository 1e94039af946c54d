// Package pathkey implements the path key grammar shared by the flattener,
// the unflattener and the tree selector.
//
// A path key is a leading name followed by any number of ".name" and "[n]"
// segments:
//
//	a.b
//	a.c[0]
//	a.c[1].d
//	[0].x      (empty leading name)
package pathkey

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	dot     = '.'
	bracket = '['
	closing = ']'
)

// SegmentKind tells name segments and index segments apart.
type SegmentKind uint8

const (
	KindName SegmentKind = iota
	KindIndex
)

func (k SegmentKind) String() string {
	if k == KindIndex {
		return "index"
	}
	return "name"
}

// Segment is one parsed element of a path key.
type Segment struct {
	kind  SegmentKind
	name  string
	index int
}

// Name returns a name segment.
func Name(name string) Segment {
	return Segment{kind: KindName, name: name}
}

// Index returns an index segment.
func Index(index int) Segment {
	return Segment{kind: KindIndex, index: index}
}

func (s Segment) Kind() SegmentKind { return s.kind }

// Name returns the segment name; empty for index segments.
func (s Segment) Name() string { return s.name }

// Index returns the segment index; zero for name segments.
func (s Segment) Index() int { return s.index }

// String renders the segment as it appears after a preceding segment.
func (s Segment) String() string {
	if s.kind == KindIndex {
		return FormatIndex(s.index)
	}
	return string(dot) + s.name
}

// SplitFirst splits key at the earliest "." or "[". The separator stays at
// the start of rest. A key without separators is returned whole as prefix;
// a key starting with "[" yields an empty prefix.
func SplitFirst(key string) (prefix, rest string) {
	idx := strings.IndexAny(key, ".[")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx:]
}

// IsTerminal reports whether key has no separators at all.
func IsTerminal(key string) bool {
	return !strings.ContainsAny(key, ".[")
}

// ParseIndex parses a bracket segment of the form "[<digits>]".
func ParseIndex(segment string) (int, error) {
	end := strings.IndexByte(segment, closing)
	if len(segment) == 0 || segment[0] != bracket || end < 1 {
		return 0, fmt.Errorf("%w (no terminating \"]\") in segment %q", ErrMalformedIndex, segment)
	}
	if end != len(segment)-1 {
		return 0, fmt.Errorf("%w (trailing text) in segment %q", ErrMalformedIndex, segment)
	}

	index, ok := parseDigits(segment[1:end])
	if !ok {
		return 0, fmt.Errorf("%w (bad index) in segment %q", ErrMalformedIndex, segment)
	}

	return index, nil
}

// FormatIndex renders an index segment.
func FormatIndex(index int) string {
	return string(bracket) + strconv.Itoa(index) + string(closing)
}

// Parse splits key into typed segments. The first segment is always a name,
// possibly empty.
func Parse(key string) ([]Segment, error) {
	prefix, rest := SplitFirst(key)
	segments := make([]Segment, 0, strings.Count(key, ".")+strings.Count(key, "[")+1)
	segments = append(segments, Name(prefix))

	for rest != "" {
		switch rest[0] {
		case dot:
			var name string
			name, rest = SplitFirst(rest[1:])
			segments = append(segments, Name(name))
		case bracket:
			end := strings.IndexByte(rest, closing)
			if end < 1 {
				return nil, fmt.Errorf("%w (no terminating \"]\") in key %q", ErrMalformedIndex, key)
			}
			index, ok := parseDigits(rest[1:end])
			if !ok {
				return nil, fmt.Errorf("%w (bad index) in key %q", ErrMalformedIndex, key)
			}
			segments = append(segments, Index(index))
			rest = rest[end+1:]
		default:
			return nil, fmt.Errorf("%w (unexpected character %q after index) in key %q", ErrMalformedKey, rest[0], key)
		}
	}

	return segments, nil
}

// Format renders segments back into a path key.
func Format(segments []Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		if i == 0 && segment.kind == KindName {
			b.WriteString(segment.name)
			continue
		}
		b.WriteString(segment.String())
	}
	return b.String()
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}

	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return index, true
}
