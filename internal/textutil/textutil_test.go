package textutil

import "testing"

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"warhammer_40k", "Warhammer 40K"},
		{"northern_dragons", "Northern Dragons"},
		{"elf", "Elf"},
		{"", ""},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := DisplayTitle(tc.in); got != tc.want {
			t.Fatalf("DisplayTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTernary(t *testing.T) {
	if got := Ternary(true, "yes", "no"); got != "yes" {
		t.Fatalf("expected yes, got %s", got)
	}
	if got := Ternary(false, 1, 2); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
