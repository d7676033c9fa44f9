package objval

import "strings"

// KeyDepth returns the depth of the given key; the number of '/' characters it contains. Note that a trailing '/' is
// counted, keys 'foo' and 'foo/' have depths zero and one respectively.
func KeyDepth(key string) int {
	return strings.Count(key, "/")
}

// KeyParent returns the parent prefix of the given key; the prefix up to and including the last '/' once any single
// trailing '/' has been stripped, or an empty string for keys at the root.
//
// For example, the parent of both 'a/b/c' and 'a/b/c/' is 'a/b/', whilst the parent of both 'a' and 'a/' is ''.
func KeyParent(key string) string {
	key = strings.TrimSuffix(key, "/")

	idx := strings.LastIndex(key, "/")
	if idx == -1 {
		return ""
	}

	return key[:idx+1]
}

// PrefixUpperBound returns the exclusive upper bound of the range of keys beginning with the given prefix, allowing
// prefix searches of the form 'key >= prefix and key < upper'. Ranges must be used in place of a 'like' so that '%'
// and '_' in keys/prefixes remain literal.
//
// An empty prefix has no upper bound, in which case an empty string is returned.
func PrefixUpperBound(prefix string) string {
	if prefix == "" {
		return ""
	}

	// Keys are UTF-8, the final byte is never 0xff so the increment can not wrap
	upper := []byte(prefix)
	upper[len(upper)-1]++

	return string(upper)
}
