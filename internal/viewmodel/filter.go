// internal/viewmodel/filter.go
//
// Pure derivations over already-fetched data. Nothing here performs I/O or
// fails; "no matches" is just an empty slice.
package viewmodel

import (
	"strings"

	"github.com/ajmalkv/rollsops/internal/domain"
)

// FilterPurchaseOrders returns the orders where the search string is a
// case-insensitive substring of the PO number, district name, or received
// date. An empty search returns the input unchanged, in original order.
// Numeric fields are never matched.
func FilterPurchaseOrders(orders []domain.PurchaseOrder, search string) []domain.PurchaseOrder {
	if search == "" {
		return orders
	}
	query := strings.ToLower(search)

	filtered := make([]domain.PurchaseOrder, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.PONo), query) ||
			strings.Contains(strings.ToLower(o.DistrictName), query) ||
			strings.Contains(strings.ToLower(o.ReceivedDate), query) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// FilterOwners searches the rolls-usage summary rows. Normally the match is
// owner name OR district name, but when the search string itself occurs in a
// known district name the filter narrows to district matches only. That keeps
// a typed district from also matching owners whose names happen to contain it.
// A query matching neither yields an empty result by the owner-name rule.
func FilterOwners(owners []domain.OwnerUsageSummary, districts domain.DistrictList, search string) []domain.OwnerUsageSummary {
	if search == "" {
		return owners
	}
	query := strings.ToLower(search)
	districtSearch := districts.ContainsQuery(search)

	filtered := make([]domain.OwnerUsageSummary, 0, len(owners))
	for _, o := range owners {
		if districtSearch {
			if strings.Contains(strings.ToLower(o.DistrictName), query) {
				filtered = append(filtered, o)
			}
			continue
		}
		if strings.Contains(strings.ToLower(o.OwnerName), query) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
