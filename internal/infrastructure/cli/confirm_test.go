package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestAskConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"whatever\n", false},
		{"", false}, // EOF
	}

	for _, tt := range tests {
		out := new(bytes.Buffer)
		confirm := askConfirm(strings.NewReader(tt.input), out)
		if got := confirm("overwrite x?"); got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "[y/N]") {
			t.Errorf("prompt missing [y/N]: %q", out.String())
		}
	}
}

func TestAskConfirmSequential(t *testing.T) {
	// One reader answers several prompts in order.
	confirm := askConfirm(strings.NewReader("y\nn\ny\n"), new(bytes.Buffer))
	want := []bool{true, false, true}
	for i, w := range want {
		if got := confirm("again?"); got != w {
			t.Errorf("answer %d: got %v, want %v", i, got, w)
		}
	}
}

func TestAlwaysConfirm(t *testing.T) {
	if !alwaysConfirm("anything") {
		t.Error("alwaysConfirm must return true")
	}
}
