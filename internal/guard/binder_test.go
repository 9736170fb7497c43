package guard

import (
	"testing"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
		arg  any
	}{
		{"int", 42, KindInt, int64(42)},
		{"int64", int64(-7), KindInt, int64(-7)},
		{"uint8", uint8(255), KindInt, int64(255)},
		{"float64", 3.5, KindFloat, 3.5},
		{"float32", float32(1.5), KindFloat, 1.5},
		{"string", "hello", KindText, "hello"},
		{"bool true", true, KindText, "1"},
		{"bool false", false, KindText, "0"},
		{"nil", nil, KindText, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValueOf(tt.in)
			if v.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", v.Kind(), tt.kind)
			}
			if got := v.Arg(); got != tt.arg {
				t.Errorf("arg = %v (%T), want %v (%T)", got, got, tt.arg, tt.arg)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	vals := []Value{Int(1), Text("bob"), Float(2.5)}

	args := Args(vals)
	if len(args) != 3 {
		t.Fatalf("len = %d, want 3", len(args))
	}
	if args[0] != int64(1) || args[1] != "bob" || args[2] != 2.5 {
		t.Errorf("args = %v, positional order not preserved", args)
	}
}

func TestArgsEmpty(t *testing.T) {
	if got := Args(nil); got != nil {
		t.Errorf("Args(nil) = %v, want nil", got)
	}
	if got := Args([]Value{}); got != nil {
		t.Errorf("Args(empty) = %v, want nil", got)
	}
}

func TestTypeTags(t *testing.T) {
	vals := []Value{Int(1), Float(0.5), Text("x"), Int(9)}

	if got := TypeTags(vals); got != "idsi" {
		t.Errorf("tags = %q, want %q", got, "idsi")
	}
	if got := TypeTags(nil); got != "" {
		t.Errorf("tags for empty = %q, want empty", got)
	}
}

func TestValues(t *testing.T) {
	vals := Values([]any{1, "a", 2.5})
	if len(vals) != 3 {
		t.Fatalf("len = %d, want 3", len(vals))
	}
	if vals[0].Kind() != KindInt || vals[1].Kind() != KindText || vals[2].Kind() != KindFloat {
		t.Errorf("kinds = %v %v %v", vals[0].Kind(), vals[1].Kind(), vals[2].Kind())
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		want string
	}{
		{"int", Int(42), "42"},
		{"float", Float(2.5), "2.5"},
		{"text", Text("bob"), "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.val.Literal(); got != tt.want {
				t.Errorf("literal = %q, want %q", got, tt.want)
			}
		})
	}
}
