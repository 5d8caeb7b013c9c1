// internal/domain/models.go
package domain

// PurchaseOrder represents a record of rolls received into a district's stock
type PurchaseOrder struct {
	ID              int64   `json:"id"`
	PONo            string  `json:"po_no"`
	DistrictID      int64   `json:"district_id"`
	DistrictName    string  `json:"district_name"`
	PurchasedCount  int     `json:"purchased_count"`
	ReceivedDate    string  `json:"received_date"`
	Count           int     `json:"count"`
	StockPercentage float64 `json:"stock_percentage"`
}

// CreatePurchaseOrderInput is the payload for the create endpoint
type CreatePurchaseOrderInput struct {
	PONo           string `json:"po_no"`
	DistrictID     int64  `json:"district_id"`
	PurchasedCount int    `json:"purchased_count"`
	ReceivedDate   string `json:"received_date"`
}

// OwnerUsageSummary is one row of the rolls-usage summary, aggregated per owner
type OwnerUsageSummary struct {
	OwnerID              int64   `json:"owner_id"`
	OwnerName            string  `json:"owner_name"`
	DistrictName         string  `json:"district_name"`
	TotalBuses           int     `json:"total_buses"`
	TotalRollsUsed       int     `json:"total_rolls_used"`
	TotalNetRolls        int     `json:"total_net_rolls"`
	TotalTicketsPrinted  int     `json:"total_tickets_printed"`
	TotalTicketsExpected int     `json:"total_tickets_expected"`
	AvgUsagePercentage   float64 `json:"avg_usage_percentage"`
}

// UsageTotals is the fleet-wide summary block beside the per-owner rows
type UsageTotals struct {
	TotalOwners           int `json:"total_owners"`
	OwnersNeedingRolls    int `json:"owners_needing_rolls"`
	OwnersNotNeedingRolls int `json:"owners_not_needing_rolls"`
}

// VehicleUsage is the per-vehicle breakdown fetched on demand for one owner
type VehicleUsage struct {
	VehicleID       int64   `json:"vehicle_id"`
	VehicleNumber   string  `json:"vehicle_number"`
	VehicleName     string  `json:"vehicle_name"`
	TicketsPrinted  int     `json:"tickets_printed"`
	TicketsExpected int     `json:"tickets_expected"`
	RollsUsed       int     `json:"rolls_used"`
	NetRolls        int     `json:"net_rolls"`
	RemainingRolls  int     `json:"remaining_rolls"`
	UsagePercentage float64 `json:"usage_percentage"`
	SafeZone        bool    `json:"safe_zone"`
	NeedsRolls      bool    `json:"needs_rolls"`
	UrgencyLevel    string  `json:"urgency_level"`
}

// DateRange bounds a ticket-count report query
type DateRange struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// VehicleBreakdown is one vehicle's ticket count inside a report
type VehicleBreakdown struct {
	VehicleID     int64  `json:"vehicle_id"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleName   string `json:"vehicle_name"`
	TicketCount   int    `json:"ticket_count"`
}

// TicketCountReport is the transient result of a bus-wise report query
type TicketCountReport struct {
	OwnerID          int64              `json:"owner_id"`
	OwnerName        string             `json:"owner_name"`
	DateRange        DateRange          `json:"date_range"`
	TotalTickets     int                `json:"total_tickets"`
	TotalVehicles    int                `json:"total_vehicles"`
	VehicleBreakdown []VehicleBreakdown `json:"vehicle_breakdown"`
}
