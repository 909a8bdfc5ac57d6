package directory

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinQueryLength is the shortest query that triggers a lookup
	MinQueryLength = 2
	// addressLikeMinLength is exclusive: "0x" plus more than 8 hex digits
	addressLikeMinLength = 10
	// DefaultSearchLimit caps name-search results
	DefaultSearchLimit = 5
	// DebounceInterval is the quiet period after the last keystroke
	DebounceInterval = 300 * time.Millisecond
)

// Kind classifies a recipient query
type Kind int

const (
	NameLike Kind = iota
	AddressLike
)

func (k Kind) String() string {
	if k == AddressLike {
		return "address"
	}
	return "name"
}

// TooShort reports whether the trimmed query has fewer than MinQueryLength
// characters. Characters are runes, not bytes.
func TooShort(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength
}

// Classify decides which lookup a query goes to
func Classify(query string) Kind {
	q := strings.TrimSpace(query)
	if strings.HasPrefix(strings.ToLower(q), "0x") && len(q) > addressLikeMinLength {
		return AddressLike
	}
	return NameLike
}
