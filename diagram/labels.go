package diagram

// Label returns the i-th edge label: a-z, A-Z, then Greek lower case, then
// CJK ideographs, which do not run out
func Label(i int) rune {
	switch {
	case i < 26:
		return 'a' + rune(i)
	case i < 52:
		return 'A' + rune(i-26)
	case i < 77:
		return 'α' + rune(i-52)
	default:
		return '一' + rune(i-77)
	}
}
