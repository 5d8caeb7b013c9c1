// internal/viewmodel/report_form.go
package viewmodel

import (
	"errors"
	"time"

	"github.com/ajmalkv/rollsops/internal/domain"
)

const dateLayout = "2006-01-02"

// ErrOwnerNotFound is raised before any network call when the typed owner
// name cannot be resolved against the cached summary.
var ErrOwnerNotFound = errors.New("Owner not found")

// ErrAmbiguousOwner is raised when the typed name matches more than one owner
// in scope. It is surfaced as a validation error, never silently resolved.
var ErrAmbiguousOwner = errors.New("Owner name matches more than one owner")

// ReportForm models the bus-wise report dialog's cross-field state. District
// and owner are coupled (the owner list is scoped by district), and the date
// range keeps end on or after start.
type ReportForm struct {
	District  string
	OwnerName string
	StartDate string
	EndDate   string

	owners []domain.OwnerUsageSummary
}

// NewReportForm builds a form over the cached owner summary. Both dates
// default to today, matching the dialog's initial state.
func NewReportForm(owners []domain.OwnerUsageSummary) *ReportForm {
	today := time.Now().Format(dateLayout)
	return &ReportForm{
		StartDate: today,
		EndDate:   today,
		owners:    owners,
	}
}

// SetDistrict changes the district and clears the owner selection, since the
// owner list is re-scoped to the new district.
func (f *ReportForm) SetDistrict(district string) {
	if district == f.District {
		return
	}
	f.District = district
	f.OwnerName = ""
}

// SetOwnerName records the owner selection. When no district is chosen yet
// and exactly one owner across all districts bears this name, the district is
// auto-filled; an ambiguous name leaves it blank rather than guessing.
func (f *ReportForm) SetOwnerName(name string) {
	f.OwnerName = name
	if f.District != "" || name == "" {
		return
	}

	var district string
	matches := 0
	for _, o := range f.owners {
		if o.OwnerName == name {
			matches++
			district = o.DistrictName
		}
	}
	if matches == 1 {
		f.District = district
	}
}

// SetStartDate records the start date. A start date later than the current
// end date pushes the end date forward to match; an unset end date is
// initialized to the start date.
func (f *ReportForm) SetStartDate(date string) {
	f.StartDate = date

	start, err := time.Parse(dateLayout, date)
	if err != nil {
		return
	}
	if f.EndDate == "" {
		f.EndDate = date
		return
	}
	if end, err := time.Parse(dateLayout, f.EndDate); err == nil && end.Before(start) {
		f.EndDate = date
	}
}

// SetEndDate records the end date as typed. Validate catches an end date the
// user forces before the start date.
func (f *ReportForm) SetEndDate(date string) {
	f.EndDate = date
}

// OwnerOptions returns the owner autocomplete list for the current district
// and typed text.
func (f *ReportForm) OwnerOptions(typed string) []string {
	return OwnerSuggestions(f.owners, f.District, typed)
}

// DistrictOptions returns the district autocomplete list for the typed text.
func (f *ReportForm) DistrictOptions(typed string) []string {
	return DistrictSuggestions(f.owners, typed)
}

// Validate runs required-field and cross-field checks, keyed by field id.
// An empty map means the form may be submitted.
func (f *ReportForm) Validate() map[string]string {
	errs := make(map[string]string)

	if f.District == "" {
		errs["district"] = "District is required"
	}
	if f.OwnerName == "" {
		errs["ownerName"] = "Owner Name is required"
	}
	if f.StartDate == "" {
		errs["startDate"] = "Starting Date is required"
	}
	if f.EndDate == "" {
		errs["endDate"] = "Ending Date is required"
	}

	if f.StartDate != "" && f.EndDate != "" {
		start, startErr := time.Parse(dateLayout, f.StartDate)
		end, endErr := time.Parse(dateLayout, f.EndDate)
		if startErr != nil {
			errs["startDate"] = "Starting Date must be a valid date"
		}
		if endErr != nil {
			errs["endDate"] = "Ending Date must be a valid date"
		}
		if startErr == nil && endErr == nil && end.Before(start) {
			errs["endDate"] = "End date must be on or after start date"
		}
	}

	return errs
}

// ResolveOwner maps the selected owner name to exactly one owner id by exact
// string match against the cached summary, scoped to the selected district
// when one is set. No match fails with ErrOwnerNotFound before any network
// call is made; more than one match is an ambiguity error.
func (f *ReportForm) ResolveOwner() (int64, error) {
	var ownerID int64
	matches := 0
	for _, o := range f.owners {
		if o.OwnerName != f.OwnerName {
			continue
		}
		if f.District != "" && o.DistrictName != f.District {
			continue
		}
		matches++
		ownerID = o.OwnerID
	}

	switch matches {
	case 0:
		return 0, ErrOwnerNotFound
	case 1:
		return ownerID, nil
	default:
		return 0, ErrAmbiguousOwner
	}
}
