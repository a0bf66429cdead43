package extract

import "strings"

// SplitHeadline derives a role and a company from a free-text headline such
// as "Engineer chez Acme | Remote".
//
// Separators are tried in order; the first one that splits the headline
// into two non-empty parts wins. The company part is then cut at the first
// terminator. ok is false when no separator produced a usable split.
func SplitHeadline(headline string, separators, terminators []string) (position, company string, ok bool) {
	headline = strings.TrimSpace(headline)
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		before, after, found := strings.Cut(headline, sep)
		if !found {
			continue
		}
		position = strings.TrimSpace(before)
		company = CutAt(after, terminators)
		if position != "" && company != "" {
			return position, company, true
		}
	}
	return "", "", false
}

// SplitName splits a display name into the first token and the rest.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
