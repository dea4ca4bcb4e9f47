package diagnostic

import (
	"github.com/hamed0406/outboundcheck/internal/domain"
	"github.com/hamed0406/outboundcheck/internal/i18n"
)

// Summarize reports whether every item succeeded and whether at least one did.
func Summarize(items []domain.CheckItem) (allGood, atLeastOneGood bool) {
	allGood = true
	for _, it := range items {
		if it.State == domain.ItemSuccess {
			atLeastOneGood = true
		} else {
			allGood = false
		}
	}
	return allGood, atLeastOneGood
}

// Meta maps the run summary to a terminal state and a description key.
// A degraded run is still a success.
func Meta(atLeastOneGood, allGood bool) (domain.CheckState, string) {
	switch {
	case atLeastOneGood && allGood:
		return domain.CheckSuccess, i18n.AllChecksPassed
	case atLeastOneGood:
		return domain.CheckSuccess, i18n.SomeChecksFailed
	default:
		return domain.CheckError, i18n.ChecksFailed
	}
}
