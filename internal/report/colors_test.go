package report

import (
	"strings"
	"testing"
)

func TestCategoryColorKnown(t *testing.T) {
	if got := CategoryColor("Food"); got != "hsl(174, 62%, 38%)" {
		t.Fatalf("unexpected color for Food: %s", got)
	}
	if got := CategoryColor("Rent"); got != "hsl(217, 70%, 55%)" {
		t.Fatalf("unexpected color for Rent: %s", got)
	}
}

func TestCategoryColorUnknownDeterministic(t *testing.T) {
	a := CategoryColor("Pet supplies")
	b := CategoryColor("Pet supplies")
	if a != b {
		t.Fatalf("color not deterministic: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "hsl(") || !strings.HasSuffix(a, ", 60%, 50%)") {
		t.Fatalf("unexpected format: %s", a)
	}
}
