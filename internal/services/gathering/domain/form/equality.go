package form

import "sort"

// IDSetEqual compares two id lists as sets: order-independent, duplicates
// collapsed, empty entries ignored. Editors whose shapes carry host or mentor
// lists compose it into a WithEqual comparator so reordering alone never
// counts as an unsaved change.
func IDSetEqual(a, b []string) bool {
	return equalSorted(dedupe(a), dedupe(b))
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func equalSorted(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
