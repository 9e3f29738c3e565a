// Package pet infers pet accommodation from free-text upstream fields.
// The upstream never provides a structured allowed/disallowed flag, so
// classification runs over curated keyword lists with a fixed rule
// order: disallow first, then allow, then default deny.
package pet

import "strings"

// Size is a requested pet size category.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// disallowKeywords mark a location as off-limits. A disallow match wins
// over any allow match present in the same text.
var disallowKeywords = []string{
	"불가",
	"금지",
	"입장불가",
	"출입불가",
	"동반불가",
	"출입금지",
	"출입제한",
	"없음",
	"안됨",
	"안 됨",
	"비허용",
}

// allowKeywords mark accompaniment as contemplated. Size-class mentions
// and required-precaution gear (leash, muzzle, carrier, waste bag) count
// as positive evidence. The generic terms ("가능", "허용") are a known
// precision/recall tradeoff: they can match unrelated text. The lists
// are tunable policy; the rule order is not.
var allowKeywords = []string{
	"동반가능",
	"동반 가능",
	"입장가능",
	"출입가능",
	"가능",
	"허용",
	"소형견",
	"중형견",
	"대형견",
	"목줄",
	"리드줄",
	"입마개",
	"케이지",
	"이동장",
	"캐리어",
	"배변봉투",
}

// sizeKeywords match the size-specific text field per requested category.
var sizeKeywords = map[Size][]string{
	SizeSmall:  {"소형", "소형견"},
	SizeMedium: {"중형", "중형견"},
	SizeLarge:  {"대형", "대형견"},
}

// MergeText joins the populated candidate fields into one classifiable
// string.
func MergeText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// containsAny reports a case-insensitive substring match against any
// keyword in the list.
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Allowed classifies merged pet-info text. No data means not allowed;
// a disallow keyword means not allowed regardless of allow keywords.
func Allowed(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if containsAny(text, disallowKeywords) {
		return false
	}
	return containsAny(text, allowKeywords)
}

// SizeMatch evaluates the size filter independently of Allowed. An
// empty requested set accepts any size. With a specific request, absent
// text is no match.
func SizeMatch(text string, sizes []Size) bool {
	if len(sizes) == 0 {
		return true
	}
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, s := range sizes {
		if containsAny(text, sizeKeywords[s]) {
			return true
		}
	}
	return false
}

// Filter is the user-selected pet filter state.
type Filter struct {
	Enabled bool
	Sizes   []Size
}

// Match combines both predicates: an item passes when the filter is
// disabled, or when accommodation is allowed and the size matches.
func (f Filter) Match(mergedText, sizeText string) bool {
	if !f.Enabled {
		return true
	}
	return Allowed(mergedText) && SizeMatch(sizeText, f.Sizes)
}

// ParseSizes converts query-string values into known size categories,
// dropping anything unrecognized.
func ParseSizes(values []string) []Size {
	out := make([]Size, 0, len(values))
	for _, v := range values {
		switch Size(strings.ToLower(strings.TrimSpace(v))) {
		case SizeSmall:
			out = append(out, SizeSmall)
		case SizeMedium:
			out = append(out, SizeMedium)
		case SizeLarge:
			out = append(out, SizeLarge)
		}
	}
	return out
}
