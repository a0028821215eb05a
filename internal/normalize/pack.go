package normalize

import (
	"regexp"
	"strconv"
)

var packRe = regexp.MustCompile(`(?i)\bPacks?\s+of\s+(\d+)\b`)

// PackQty infers the pack multiplier from a description ("Packs of 10, Each"
// -> 10). Descriptions without a pack phrase yield 1.
func PackQty(description string) int64 {
	m := packRe.FindStringSubmatch(description)
	if m == nil {
		return 1
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
