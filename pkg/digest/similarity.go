package digest

// similarityRatio computes a [0,1] similarity between two strings using the
// Ratcliff/Obershelp algorithm: twice the number of matching characters over
// the total length. Equivalent strings yield 1.0, disjoint strings 0.0.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	matched := matchingRunes(ra, rb)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingRunes counts matched characters: find the longest common substring,
// then recurse into the unmatched pieces on both sides of it
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingRunes(a[:ai], b[:bi])
	total += matchingRunes(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonSubstring returns the start positions and length of the longest
// run of runes common to a and b, preferring the earliest occurrence on ties
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	runLen := make(map[int]int, len(b)) // end position in b -> run length
	for i := range a {
		next := make(map[int]int, len(b))
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > size {
				ai, bi, size = i-k+1, j-k+1, k
			}
		}
		runLen = next
	}
	return ai, bi, size
}
