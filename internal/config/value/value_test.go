package value

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/dshills/imgclip/internal/host"
)

func TestMaterialize(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		ctx  Context
		want any
	}{
		{"absent", nil, Context{}, nil},
		{"string literal", Literal{V: "assets"}, Context{}, "assets"},
		{"false literal", Literal{V: false}, Context{}, false},
		{"zero literal", Literal{V: 0}, Context{}, 0},
		{
			name: "computed from args",
			v:    Computed(func(ctx Context) any { return ctx.Args["label"] }),
			ctx:  Context{Args: Args{"label": "fig"}},
			want: "fig",
		},
		{
			name: "computed from host",
			v:    Computed(func(ctx Context) any { return ctx.Host.FileName() }),
			ctx:  Context{Host: host.Static{Path: "/a/b.md"}},
			want: "b.md",
		},
		{
			name: "computed returning value",
			v:    Computed(func(Context) any { return Literal{V: 3} }),
			want: 3,
		},
		{
			name: "tree",
			v: Tree{
				"enabled": Literal{V: true},
				"mode":    Computed(func(Context) any { return "copy" }),
			},
			want: map[string]any{"enabled": true, "mode": "copy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Materialize(tt.v, tt.ctx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Materialize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMaterialize_ZeroContext(t *testing.T) {
	var sawArgs Args
	var sawHost host.Host
	v := Computed(func(ctx Context) any {
		sawArgs = ctx.Args
		sawHost = ctx.Host
		return nil
	})

	Materialize(v, Context{})

	if sawArgs == nil {
		t.Error("Computed received nil Args, want empty map")
	}
	if sawHost == nil {
		t.Error("Computed received nil Host, want Nop host")
	}
}

func TestMaterialize_ReevaluatesComputed(t *testing.T) {
	counter := 0
	v := Computed(func(Context) any {
		counter++
		return fmt.Sprintf("computed-%d", counter)
	})

	first := Materialize(v, Context{})
	second := Materialize(v, Context{})
	if first == second {
		t.Errorf("Materialize returned %v twice, want a fresh value per call", first)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, true},
		{"", true},
		{"yes", true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != nil {
		t.Error("Of(nil) should be nil")
	}

	if got, ok := Of("x").(Literal); !ok || got.V != "x" {
		t.Errorf("Of(string) = %#v, want Literal", Of("x"))
	}

	tree, ok := Of(map[string]any{"a": 1, "gone": nil, "sub": map[string]any{"b": true}}).(Tree)
	if !ok {
		t.Fatalf("Of(map) = %T, want Tree", Of(map[string]any{}))
	}
	if _, exists := tree["gone"]; exists {
		t.Error("nil member should be dropped")
	}
	if _, ok := tree["sub"].(Tree); !ok {
		t.Errorf("nested map = %T, want Tree", tree["sub"])
	}

	funcs := []any{
		func() any { return "zero" },
		func() string { return "zero" },
		func(args Args) any { return args["k"] },
		func(ctx Context) any { return ctx.Args["k"] },
	}
	for i, fn := range funcs {
		c, ok := Of(fn).(Computed)
		if !ok {
			t.Errorf("Of(func #%d) = %T, want Computed", i, Of(fn))
			continue
		}
		if got := Materialize(c, Context{Args: Args{"k": "zero"}}); got != "zero" {
			t.Errorf("func #%d materialized to %v, want zero", i, got)
		}
	}

	lit := Literal{V: 1}
	if Of(lit) != Value(lit) {
		t.Error("Of(Value) should pass through")
	}
}
