// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package alias

import "strings"

// Similarity is the classic Ratcliff-Obershelp ratio over lowercased
// byte sequences: twice the total length of the matching blocks divided
// by the combined length. 1.0 means identical, 0.0 means disjoint.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if len(a)+len(b) == 0 {
		return 0
	}
	matched := matchedLength(a, b, 0, len(a), 0, len(b))
	return 2 * float64(matched) / float64(len(a)+len(b))
}

// matchedLength sums the lengths of the matching blocks by finding the
// longest common block in the window and recursing on both sides.
func matchedLength(a, b string, alo, ahi, blo, bhi int) int {
	bestI, bestJ, bestSize := longestMatch(a, b, alo, ahi, blo, bhi)
	if bestSize == 0 {
		return 0
	}
	total := bestSize
	total += matchedLength(a, b, alo, bestI, blo, bestJ)
	total += matchedLength(a, b, bestI+bestSize, ahi, bestJ+bestSize, bhi)
	return total
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] inside
// the window, preferring the earliest in a, then the earliest in b.
func longestMatch(a, b string, alo, ahi, blo, bhi int) (bestI, bestJ, bestSize int) {
	bestI, bestJ = alo, blo

	// b2j maps each byte of b's window to its positions.
	b2j := make(map[byte][]int)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	// j2len[j] is the length of the match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return bestI, bestJ, bestSize
}
