package money

import "testing"

func TestFormat(t *testing.T) {
	cases := map[int64]string{
		0:         "0,00 ₺",
		5:         "0,05 ₺",
		123456:    "1.234,56 ₺",
		100000000: "1.000.000,00 ₺",
		-1999:     "-19,99 ₺",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Fatalf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLira(t *testing.T) {
	cases := map[string]int64{
		"1234,56":   123456,
		"1.234,56":  123456,
		"1234.5":    123450,
		"12 ₺":      1200,
		"99,90 TL":  9990,
	}
	for in, want := range cases {
		got, ok := ParseLira(in)
		if !ok || got != want {
			t.Fatalf("ParseLira(%q) = %d,%v want %d", in, got, ok, want)
		}
	}

	for _, bad := range []string{"", "abc", "1,234", "-5"} {
		if _, ok := ParseLira(bad); ok {
			t.Fatalf("ParseLira(%q) expected failure", bad)
		}
	}
}
