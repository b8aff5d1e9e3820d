package mapping

import "strings"

// FilterTags removes tags that duplicate information already captured by
// structured fields: tags equal to a collected target-user, category or
// domain display name, and tags starting with "Access Mode" or
// "Access Type". Matching is exact and case-sensitive; everything else
// passes through in its original order. Filtering is idempotent.
func FilterTags(tags, targetUserNames, categoryNames, domainNames []string) []string {
	kept := []string{}
	for _, tag := range tags {
		switch {
		case containsString(targetUserNames, tag):
		case strings.HasPrefix(tag, "Access Mode") || strings.HasPrefix(tag, "Access Type"):
		case containsString(categoryNames, tag) || containsString(domainNames, tag):
		default:
			kept = append(kept, tag)
		}
	}
	return kept
}
