package streamenc

import "testing"

func TestIndentSpaces(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"disabled at zero", 0, ""},
		{"disabled negative", -3, ""},
		{"two spaces", 2, "  "},
		{"clamped to ten", 25, "          "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := IndentSpaces(tt.n)
			if ind.unit != tt.want {
				t.Errorf("IndentSpaces(%d).unit = %q, want %q", tt.n, ind.unit, tt.want)
			}
		})
	}
}

func TestIndentString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty disables", "", ""},
		{"tab", "\t", "\t"},
		{"truncated to ten runes", "abcdefghijklmno", "abcdefghij"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := IndentString(tt.in)
			if ind.unit != tt.want {
				t.Errorf("IndentString(%q).unit = %q, want %q", tt.in, ind.unit, tt.want)
			}
		})
	}
}

func TestIndentStringTruncatesByRuneNotByte(t *testing.T) {
	// 12 multi-byte runes; truncation must stop at 10 runes, not 10 bytes,
	// so no rune is ever split across a byte boundary.
	in := "世世世世世世世世世世世世"
	ind := IndentString(in)
	runes := []rune(ind.unit)
	if len(runes) != 10 {
		t.Fatalf("truncated rune count = %d, want 10", len(runes))
	}
}

func TestIndentNewLine(t *testing.T) {
	var buf buffer
	ind := IndentSpaces(2)
	ind.newLine(&buf, 3)
	if string(buf.data) != "\n      " {
		t.Errorf("newLine(depth=3) = %q, want %q", buf.data, "\n      ")
	}
}

func TestIndentNewLineDisabled(t *testing.T) {
	var buf buffer
	var ind Indent
	ind.newLine(&buf, 3)
	if len(buf.data) != 0 {
		t.Errorf("newLine while disabled wrote %q, want nothing", buf.data)
	}
}

func TestIndentAfterColon(t *testing.T) {
	var buf buffer
	IndentSpaces(2).afterColon(&buf)
	if string(buf.data) != " " {
		t.Errorf("afterColon enabled wrote %q, want a single space", buf.data)
	}

	buf = buffer{}
	var disabled Indent
	disabled.afterColon(&buf)
	if len(buf.data) != 0 {
		t.Errorf("afterColon disabled wrote %q, want nothing", buf.data)
	}
}
