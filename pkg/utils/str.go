package utils

import "strings"

// MergeStrings .
func MergeStrings(a, b []string) []string {
	var dic = make(map[string]struct{})
	var strs = make([]string, 0, len(a)+len(b))

	var appendx = func(ar []string) {
		for _, k := range ar {
			if _, exists := dic[k]; exists {
				continue
			}
			dic[k] = struct{}{}
			strs = append(strs, k)
		}
	}

	appendx(a)
	appendx(b)

	return strs
}

// PartLeft partitions the str by the sep.
func PartLeft(str, sep string) (string, string) {
	switch i := strings.Index(str, sep); {
	case i < 0:
		return str, ""
	case i == 0:
		return "", str[i+1:]
	default:
		return str[:i], str[i+1:]
	}
}

// SplitList splits s on commas and pipes, trimming blanks and dropping empties.
func SplitList(s string) []string {
	var parts = strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|'
	})
	var out = make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); len(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}
