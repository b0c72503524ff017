// Package value defines the values stored in a configuration tree.
//
// A configuration value is one of three variants:
//
//   - Literal: a scalar (string, bool, number) or list stored as-is
//   - Computed: a deferred value produced on demand from a Context
//   - Tree: a nested mapping from keys to values
//
// Materialize turns any of them into a plain Go value. Computed values are
// re-evaluated on every call; nothing is cached.
package value

import (
	"github.com/dshills/imgclip/internal/host"
)

// Value is a node in a configuration tree.
// The set of implementations is closed: Literal, Computed and Tree.
type Value interface {
	isValue()
}

// Literal is a value stored verbatim.
type Literal struct {
	V any
}

// Computed is a value computed from the resolution context each time it is read.
type Computed func(ctx Context) any

// Tree is a nested mapping of configuration keys.
type Tree map[string]Value

func (Literal) isValue() {}
func (Computed) isValue() {}
func (Tree) isValue() {}

// Args is the free-form argument bag a caller passes to deferred values.
type Args map[string]any

// Context is handed to Computed values when they are materialized.
type Context struct {
	// Args are the caller-supplied arguments for this resolution.
	Args Args

	// Host answers questions about the current file and directory.
	Host host.Host
}

// withDefaults fills in an empty Args map and a Nop host.
func (c Context) withDefaults() Context {
	if c.Args == nil {
		c.Args = Args{}
	}
	if c.Host == nil {
		c.Host = host.Nop{}
	}
	return c
}

// Materialize produces the concrete value of v.
//
// A nil v means the key does not exist and yields nil. Computed values are
// invoked with ctx. Trees become map[string]any with every member
// materialized using the same ctx.
func Materialize(v Value, ctx Context) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Literal:
		return v.V
	case Computed:
		if v == nil {
			return nil
		}
		out := v(ctx.withDefaults())
		if nested, ok := out.(Value); ok {
			return Materialize(nested, ctx)
		}
		return out
	case Tree:
		result := make(map[string]any, len(v))
		for key, child := range v {
			result[key] = Materialize(child, ctx)
		}
		return result
	default:
		return nil
	}
}

// Truthy reports whether a materialized value counts as true.
// Only nil and false are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// Of wraps a Go value in the matching Value variant.
//
// Maps become Trees, functions become Computed values, Values pass through
// unchanged and everything else becomes a Literal. A nil input returns nil.
func Of(raw any) Value {
	switch r := raw.(type) {
	case nil:
		return nil
	case Value:
		return r
	case map[string]any:
		return TreeOf(r)
	case func(Context) any:
		return Computed(r)
	case func(Args) any:
		return Computed(func(ctx Context) any { return r(ctx.Args) })
	case func() any:
		return Computed(func(Context) any { return r() })
	case func() string:
		return Computed(func(Context) any { return r() })
	case func() bool:
		return Computed(func(Context) any { return r() })
	default:
		return Literal{V: raw}
	}
}

// TreeOf converts a raw map into a Tree. Nil members are dropped.
func TreeOf(raw map[string]any) Tree {
	if raw == nil {
		return nil
	}

	t := make(Tree, len(raw))
	for key, val := range raw {
		if v := Of(val); v != nil {
			t[key] = v
		}
	}
	return t
}
