package search

import "unicode/utf16"

func isLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u <= 0xDFFF
}

// hasSurrogates reports whether units contains any half of a surrogate pair.
// Blocks without surrogates map unit indexes to code points one to one.
func hasSurrogates(units []uint16) bool {
	for _, u := range units {
		if utf16.IsSurrogate(rune(u)) {
			return true
		}
	}
	return false
}

// CodepointCount returns the number of code points units contributes. Every
// unit except a trailing (low) surrogate starts a code point.
func CodepointCount(units []uint16) int64 {
	var n int64
	for _, u := range units {
		if !isLowSurrogate(u) {
			n++
		}
	}
	return n
}

// codepointMap fills dst with len(units)+1 entries where entry i is the number
// of code points that start before units[i]. The final entry is the total
// count so an index one past the end still resolves.
func codepointMap(dst []int, units []uint16) []int {
	n := len(units) + 1
	var m []int
	if cap(dst) >= n {
		m = dst[:n]
	} else {
		m = make([]int, n)
	}
	count := 0
	for i, u := range units {
		m[i] = count
		if !isLowSurrogate(u) {
			count++
		}
	}
	m[len(units)] = count
	return m
}
