package entities

import (
	"sort"
	"strconv"
	"strings"
)

// SortSizes sorts sizes in place. Sizes are ordered numerically only when every
// size parses as an integer; a single non-numeric size switches the whole set to
// lexicographic order.
func SortSizes(sizes []string) {
	allNumeric := true
	numbers := make(map[string]int, len(sizes))
	for _, size := range sizes {
		n, err := strconv.Atoi(strings.TrimSpace(size))
		if err != nil {
			allNumeric = false
			break
		}
		numbers[size] = n
	}

	if !allNumeric {
		sort.Strings(sizes)
		return
	}

	sort.SliceStable(sizes, func(i, j int) bool {
		if numbers[sizes[i]] != numbers[sizes[j]] {
			return numbers[sizes[i]] < numbers[sizes[j]]
		}
		return sizes[i] < sizes[j]
	})
}
