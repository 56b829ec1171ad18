// Package util contains misc internal utilities.
package util

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// IntSliceToCSV convets a slice of ints to CSV formatted data.
// e.g., []int{1,2,3,4,5} => "1,2,3,4,5"
func IntSliceToCSV(is []int) string {
	s := make([]string, len(is))
	for i, v := range is {
		s[i] = strconv.Itoa(v)
	}

	return strings.Join(s, ",")
}

// GetBit returns the value of a given bit in a 32-bit word
func GetBit(w uint32, bitIndex uint) bool {
	return w&(1<<bitIndex) != 0
}

// SetBit sets or clears a given bit in a 32-bit word
func SetBit(w uint32, bitIndex uint, on bool) uint32 {
	if on {
		return w | (1 << bitIndex)
	}
	return w &^ (1 << bitIndex)
}

// UniqueString returns the unique strings in a slice, preserving
// the order of first appearance
func UniqueString(strs []string) []string {
	seen := make(map[string]struct{}, len(strs))
	out := make([]string, 0, len(strs))
	for _, s := range strs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SecsToDuration converts a floating point number of seconds to a time.Duration
// rounded to the nearest nanosecond
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * 1e9))
}
