// Package selector picks or omits keys of mapping-shaped values and records,
// either verbatim, by prefix, or hierarchically along dotted paths.
package selector

import (
	"fmt"
	"strings"
)

// Mode selects how keys are matched.
type Mode uint8

const (
	// ModePlain matches keys verbatim against the immediate keys of the source.
	ModePlain Mode = iota
	// ModePrefix restricts the source to keys starting with Options.Prefix.
	ModePrefix
	// ModeTree resolves dotted keys against nested mappings.
	ModeTree
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModePrefix:
		return "prefix"
	case ModeTree:
		return "tree"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Options configures Pick and Omit. The zero value selects plain mode with
// Map results.
type Options struct {
	Mode Mode
	// Prefix is only valid with ModePrefix. An empty prefix matches every key.
	Prefix string
	// Factory builds result containers; nil means NewMap.
	Factory Factory
}

func (o Options) validate() error {
	switch o.Mode {
	case ModePlain, ModePrefix:
	case ModeTree:
		if o.Prefix != "" {
			return fmt.Errorf("%w: prefix and tree mode cannot be used together", ErrInvalidOptionCombination)
		}
	default:
		return fmt.Errorf("%w: unknown %s", ErrInvalidOptionCombination, o.Mode)
	}

	if o.Mode != ModePrefix && o.Prefix != "" {
		return fmt.Errorf("%w: prefix %q requires prefix mode", ErrInvalidOptionCombination, o.Prefix)
	}

	return nil
}

func (o Options) newContainer() Container {
	if o.Factory == nil {
		return NewMap()
	}
	return o.Factory()
}

// Pick returns a container holding the requested keys of source. Keys that
// are not present are ignored.
//
// In prefix mode the source is first reduced to the keys starting with the
// prefix, with the prefix stripped; without keys that whole reduced source is
// returned. In tree mode "a.b" selects "a" and keeps only "b" inside it when
// "a" holds a mapping, even when "a" is also requested on its own.
func Pick(source any, keys []string, opts Options) (Container, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	fields, err := fieldsOf(source)
	if err != nil {
		return nil, err
	}

	out := opts.newContainer()
	if len(fields) == 0 {
		return out, nil
	}

	if opts.Mode == ModePrefix {
		fields = stripPrefix(fields, opts.Prefix)
		if len(keys) == 0 {
			for _, f := range fields {
				out.Set(f.name, f.value)
			}
			return out, nil
		}
	}

	if len(keys) == 0 {
		return out, nil
	}

	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		if opts.Mode == ModeTree {
			key, _, _ = strings.Cut(key, ".")
		}
		wanted[key] = true
	}

	for _, f := range fields {
		if wanted[f.name] {
			out.Set(f.name, f.value)
		}
	}

	if opts.Mode != ModeTree {
		return out, nil
	}

	for _, b := range groupRemainders(keys) {
		if len(b.remainders) == 0 {
			continue
		}
		if err := refine(out, b, func(value any) (Container, error) {
			return Pick(value, b.remainders, opts)
		}); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Omit returns a container holding every key of source except the given ones.
//
// In prefix mode every key starting with the prefix is excluded as well. In
// tree mode dotted keys never remove top-level keys; "a.b" removes "b" from
// the mapping held by "a".
func Omit(source any, keys []string, opts Options) (Container, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	fields, err := fieldsOf(source)
	if err != nil {
		return nil, err
	}

	out := opts.newContainer()
	if len(fields) == 0 {
		return out, nil
	}

	if opts.Mode == ModePrefix {
		fields = dropPrefix(fields, opts.Prefix)
	}

	excluded := make(map[string]bool, len(keys))
	for _, key := range keys {
		if opts.Mode == ModeTree && strings.Contains(key, ".") {
			continue
		}
		excluded[key] = true
	}

	for _, f := range fields {
		if !excluded[f.name] {
			out.Set(f.name, f.value)
		}
	}

	if opts.Mode != ModeTree {
		return out, nil
	}

	for _, b := range groupRemainders(keys) {
		if len(b.remainders) == 0 {
			continue
		}
		if err := refine(out, b, func(value any) (Container, error) {
			return Omit(value, b.remainders, opts)
		}); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// branch collects the dotted remainders requested under one top-level key.
type branch struct {
	head       string
	remainders []string
}

func groupRemainders(keys []string) []*branch {
	var (
		order  []*branch
		byHead = make(map[string]*branch)
	)

	for _, key := range keys {
		head, rest, dotted := strings.Cut(key, ".")
		b, ok := byHead[head]
		if !ok {
			b = &branch{head: head}
			byHead[head] = b
			order = append(order, b)
		}
		if dotted {
			b.remainders = append(b.remainders, rest)
		}
	}

	return order
}

// refine replaces the value under b.head with filter(value) when that value
// is a mapping. Other values are left untouched.
func refine(out Container, b *branch, filter func(any) (Container, error)) error {
	value, ok := out.Get(b.head)
	if !ok || !isNested(value) {
		return nil
	}

	filtered, err := filter(value)
	if err != nil {
		return fmt.Errorf("%s: %w", b.head, err)
	}
	out.Set(b.head, filtered)

	return nil
}

func stripPrefix(fields []field, prefix string) []field {
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f.name, prefix); ok {
			out = append(out, field{name: name, value: f.value})
		}
	}
	return out
}

func dropPrefix(fields []field, prefix string) []field {
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if !strings.HasPrefix(f.name, prefix) {
			out = append(out, f)
		}
	}
	return out
}
