package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 5 ", "5", true},
		{"0.01", "0.01", true},
		{"0", "", false},
		{"-5", "", false},
		{"+5", "", false},
		{"abc", "", false},
		{"", "", false},
		{"1.2.3", "", false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
			}
			if got.String() != tc.want {
				t.Fatalf("case %d (%q) expected %s, got %s", i, tc.in, tc.want, got)
			}
			continue
		}
		if err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
	}
}

func TestParseLimit(t *testing.T) {
	if _, err := ParseLimit("0"); err != nil {
		t.Fatalf("zero limit should parse, got %v", err)
	}
	if _, err := ParseLimit("600"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := ParseLimit("-1"); err == nil {
		t.Fatalf("expected error for negative limit")
	}
	if _, err := ParseLimit(""); err == nil {
		t.Fatalf("expected error for empty limit")
	}
}
