package streamenc

import (
	"math"
	"testing"
)

func encodePrimitive(t *testing.T, v any) string {
	t.Helper()
	var buf buffer
	if err := writePrimitive(&buf, "", v); err != nil {
		t.Fatalf("writePrimitive(%v) error: %v", v, err)
	}
	return string(buf.data)
}

func TestWritePrimitive(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"undefined", Undefined, "null"},
		{"nil pointer", (*int)(nil), "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int", -7, "-7"},
		{"int64", int64(9000000000), "9000000000"},
		{"uint", uint(3), "3"},
		{"float simple", 3.5, "3.5"},
		{"float integer-valued", 4.0, "4"},
		{"float32", float32(1.5), "1.5"},
		{"nan", math.NaN(), "null"},
		{"inf", math.Inf(1), "null"},
		{"neg inf", math.Inf(-1), "null"},
		{"empty string", "", `""`},
		{"simple string", "hello", `"hello"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"control char", "a\x01b", "\"a\\u0001b\""},
		{"non-bmp rune", "a\U0001F600b", "\"a\\ud83d\\ude00b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodePrimitive(t, tt.in)
			if got != tt.want {
				t.Errorf("writePrimitive(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestWritePrimitiveUnsupportedType(t *testing.T) {
	var buf buffer
	err := writePrimitive(&buf, "root.field", complex(1, 2))
	if err == nil {
		t.Fatal("expected error for complex128, got nil")
	}
	encErr, ok := err.(*EncodeError)
	if !ok {
		t.Fatalf("error is %T, want *EncodeError", err)
	}
	if encErr.Code != UnsupportedType {
		t.Errorf("Code = %v, want UnsupportedType", encErr.Code)
	}
	if encErr.Path != "root.field" {
		t.Errorf("Path = %q, want root.field", encErr.Path)
	}
}

func TestIsFastPathString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", true},
		{"ascii", "hello world", true},
		{"has quote", `a"b`, false},
		{"has backslash", `a\b`, false},
		{"has control char", "a\nb", false},
		{"too long", string(make([]byte, fastPathMaxLen+1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFastPathString(tt.in); got != tt.want {
				t.Errorf("isFastPathString(%q) = %t, want %t", tt.in, got, tt.want)
			}
		})
	}
}
