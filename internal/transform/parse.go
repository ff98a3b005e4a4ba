package transform

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseInt reads the leading base-10 integer of value, so "12abc" is 12 and
// "1.5" is 1. It reports false when no digits lead the text or the number
// does not fit in an int64.
func ParseInt(value string) (int64, bool) {
	value = strings.TrimLeftFunc(value, unicode.IsSpace)

	end := 0
	if end < len(value) && (value[end] == '+' || value[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.ParseInt(value[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
