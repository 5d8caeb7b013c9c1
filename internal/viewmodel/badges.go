package viewmodel

import "github.com/ajmalkv/rollsops/internal/domain"

// Display thresholds. These are rendering conventions, not stored business
// rules, and are deliberately not configurable.
const (
	stockLowThreshold = 25
	lowUsageThreshold = 20
)

// UsageLevel classifies an owner's average usage for the badge color.
type UsageLevel string

const (
	UsageLow  UsageLevel = "low"  // rendered red
	UsageHigh UsageLevel = "high" // rendered green
)

// StockLow reports whether a purchase-order row gets the "Count Low" flag.
func StockLow(o domain.PurchaseOrder) bool {
	return o.StockPercentage <= stockLowThreshold
}

// OwnerUsageLevel classifies an owner summary row's usage badge.
func OwnerUsageLevel(o domain.OwnerUsageSummary) UsageLevel {
	if o.AvgUsagePercentage < lowUsageThreshold {
		return UsageLow
	}
	return UsageHigh
}

// PurchaseOrderRow is a purchase order annotated with its derived display flag.
type PurchaseOrderRow struct {
	domain.PurchaseOrder
	CountLow bool `json:"count_low"`
}

// OwnerRow is an owner summary annotated with its usage badge.
type OwnerRow struct {
	domain.OwnerUsageSummary
	UsageLevel UsageLevel `json:"usage_level"`
}

// AnnotatePurchaseOrders derives display rows from purchase orders.
func AnnotatePurchaseOrders(orders []domain.PurchaseOrder) []PurchaseOrderRow {
	rows := make([]PurchaseOrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, PurchaseOrderRow{PurchaseOrder: o, CountLow: StockLow(o)})
	}
	return rows
}

// AnnotateOwners derives display rows from owner summaries.
func AnnotateOwners(owners []domain.OwnerUsageSummary) []OwnerRow {
	rows := make([]OwnerRow, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, OwnerRow{OwnerUsageSummary: o, UsageLevel: OwnerUsageLevel(o)})
	}
	return rows
}
