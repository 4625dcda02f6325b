package search

// ZFunction returns the Z-array of s: z[0] is len(s) and z[i] is the length
// of the longest common prefix of s and s[i:].
func ZFunction(s []uint16) []int {
	return zFunctionInto(nil, s)
}

// zFunctionInto computes the Z-array of s reusing dst's backing array when it
// is large enough.
func zFunctionInto(dst []int, s []uint16) []int {
	n := len(s)
	var z []int
	if cap(dst) >= n {
		z = dst[:n]
	} else {
		z = make([]int, n)
	}
	if n == 0 {
		return z
	}
	z[0] = n

	// [l, r) is the rightmost window known to match a prefix of s.
	l, r := 0, 0
	for i := 1; i < n; i++ {
		k := 0
		if i < r {
			k = min(z[i-l], r-i)
		}
		for i+k < n && s[k] == s[i+k] {
			k++
		}
		z[i] = k
		if i+k > r {
			l, r = i, i+k
		}
	}
	return z
}
