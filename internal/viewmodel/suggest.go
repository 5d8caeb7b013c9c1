package viewmodel

import (
	"sort"
	"strings"

	"github.com/ajmalkv/rollsops/internal/domain"
)

// DistrictSuggestions derives the district autocomplete list: the
// de-duplicated district names present in the cached owner summary, filtered
// by a case-insensitive substring of the typed text. The result is sorted so
// re-deriving from the same input always yields the same list.
func DistrictSuggestions(owners []domain.OwnerUsageSummary, typed string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, o := range owners {
		if _, ok := seen[o.DistrictName]; ok {
			continue
		}
		seen[o.DistrictName] = struct{}{}
		names = append(names, o.DistrictName)
	}
	sort.Strings(names)

	if typed == "" {
		return names
	}
	query := strings.ToLower(typed)
	filtered := names[:0]
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), query) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// OwnerSuggestions derives the owner autocomplete list: owners scoped to the
// selected district (all owners when none is selected), filtered by a
// case-insensitive substring of the typed text.
func OwnerSuggestions(owners []domain.OwnerUsageSummary, selectedDistrict, typed string) []string {
	query := strings.ToLower(typed)

	var names []string
	for _, o := range owners {
		if selectedDistrict != "" && o.DistrictName != selectedDistrict {
			continue
		}
		if typed != "" && !strings.Contains(strings.ToLower(o.OwnerName), query) {
			continue
		}
		names = append(names, o.OwnerName)
	}
	return names
}
