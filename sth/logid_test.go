package sth

import "testing"

func TestNormalizeLogID(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{raw: "", want: ""},
		{raw: "A", want: "A==="},
		{raw: "AA", want: "AA=="},
		{raw: "AAA", want: "AAA="},
		{raw: "AAA=", want: "AAA="},
		{raw: "AAAA", want: "AAAA"},
		{raw: "pLkJj", want: "pLkJj==="},
		{raw: "not base64!", want: "not base64!="},
	}
	for _, c := range testCases {
		got := NormalizeLogID(c.raw)
		if got != c.want {
			t.Errorf("NormalizeLogID(%q) = %q, want %q", c.raw, got, c.want)
		}
		if len(got)%4 != 0 {
			t.Errorf("NormalizeLogID(%q) length %d is not a multiple of 4", c.raw, len(got))
		}
		if again := NormalizeLogID(got); again != got {
			t.Errorf("NormalizeLogID is not idempotent for %q: %q != %q", c.raw, again, got)
		}
	}
}
