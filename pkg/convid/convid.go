package convid

import "strconv"

// Separator joins the two participant ids. Ids are decimal strings, so it
// can never occur inside an identifier.
const Separator = "_"

// Derive returns the conversation key for a pair of participants. Both ids
// are formatted as decimal strings, sorted, and joined with the separator,
// so the key is identical regardless of argument order and distinct for any
// distinct unordered pair.
func Derive(a, b uint) string {
	x := strconv.FormatUint(uint64(a), 10)
	y := strconv.FormatUint(uint64(b), 10)
	if y < x {
		x, y = y, x
	}
	return x + Separator + y
}
