// Package setup evaluates gathering setup-item completion and aggregates it
// into a per-gathering setup session used to gate launch.
package setup

import "strings"

// ItemStatus describes the completion state of one setup item.
type ItemStatus string

const (
	// StatusIncomplete indicates the item's required fields are not satisfied.
	StatusIncomplete ItemStatus = "incomplete"
	// StatusComplete indicates the item's required fields are satisfied.
	StatusComplete ItemStatus = "complete"
	// StatusCompleteTBD indicates the item was deliberately deferred. Only the
	// location item reaches this state; it satisfies launch like StatusComplete
	// and differs only in display affordance.
	StatusCompleteTBD ItemStatus = "complete_tbd"
)

// Satisfied reports whether the status counts toward launch readiness.
func (s ItemStatus) Satisfied() bool {
	return s == StatusComplete || s == StatusCompleteTBD
}

// ItemKey identifies one of the six tracked setup items. The set is closed.
type ItemKey string

const (
	ItemGatheringType ItemKey = "gatheringType"
	ItemTitleAndHosts ItemKey = "titleAndHosts"
	ItemDateTime      ItemKey = "dateTime"
	ItemLocation      ItemKey = "location"
	ItemMentor        ItemKey = "mentor"
	ItemDescription   ItemKey = "description"
)

// Keys returns the six setup item keys in display order.
func Keys() []ItemKey {
	return []ItemKey{
		ItemGatheringType,
		ItemTitleAndHosts,
		ItemDateTime,
		ItemLocation,
		ItemMentor,
		ItemDescription,
	}
}

// NormalizeItemKey canonicalizes an item key label from external input.
func NormalizeItemKey(value string) (ItemKey, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	for _, key := range Keys() {
		if strings.EqualFold(trimmed, string(key)) {
			return key, true
		}
	}
	return "", false
}
