package report

import (
	"fmt"
	"hash/fnv"
)

// Fixed hues for the known category vocabulary. Chart clients rely on these
// staying stable across releases.
var categoryColors = map[string]string{
	"Food":       "hsl(174, 62%, 38%)",
	"Rent":       "hsl(217, 70%, 55%)",
	"Travel":     "hsl(38, 92%, 50%)",
	"Shopping":   "hsl(0, 72%, 55%)",
	"Others":     "hsl(152, 60%, 42%)",
	"Salary":     "hsl(152, 60%, 42%)",
	"Freelance":  "hsl(174, 62%, 38%)",
	"Investment": "hsl(217, 70%, 55%)",
}

// CategoryColor returns the chart color for a category name. Unknown names
// get a hue derived from an FNV-1a hash of the name, so the same category
// always renders with the same color.
func CategoryColor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	hue := h.Sum32() % 360
	return fmt.Sprintf("hsl(%d, 60%%, 50%%)", hue)
}
