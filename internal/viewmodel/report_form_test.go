package viewmodel

import (
	"errors"
	"testing"

	"github.com/ajmalkv/rollsops/internal/domain"
)

func reportOwners() []domain.OwnerUsageSummary {
	return []domain.OwnerUsageSummary{
		{OwnerID: 10, OwnerName: "Anil Kumar", DistrictName: "Kozhikode"},
		{OwnerID: 11, OwnerName: "Biju Thomas", DistrictName: "Thrissur"},
		{OwnerID: 12, OwnerName: "Suresh Nair", DistrictName: "Thrissur"},
	}
}

func TestOwnerSelectionAutoFillsUniqueDistrict(t *testing.T) {
	form := NewReportForm(reportOwners())

	form.SetOwnerName("Anil Kumar")
	if form.District != "Kozhikode" {
		t.Fatalf("expected district auto-filled to Kozhikode, got %q", form.District)
	}
}

func TestOwnerSelectionLeavesAmbiguousDistrictBlank(t *testing.T) {
	owners := []domain.OwnerUsageSummary{
		{OwnerID: 10, OwnerName: "Anil Kumar", DistrictName: "Kozhikode"},
		{OwnerID: 20, OwnerName: "Anil Kumar", DistrictName: "Kollam"},
	}
	form := NewReportForm(owners)

	form.SetOwnerName("Anil Kumar")
	if form.District != "" {
		t.Fatalf("ambiguous owner name must not guess a district, got %q", form.District)
	}
}

func TestDistrictChangeClearsOwner(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.SetDistrict("Thrissur")
	form.SetOwnerName("Biju Thomas")

	form.SetDistrict("Kozhikode")
	if form.OwnerName != "" {
		t.Fatalf("changing district must clear the owner selection, got %q", form.OwnerName)
	}
}

func TestStartDatePushesEndDateForward(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.SetStartDate("2025-01-10")
	form.SetEndDate("2025-01-05")

	form.SetStartDate("2025-01-15")
	if form.EndDate != "2025-01-15" {
		t.Fatalf("end date must be pushed to the new start date, got %q", form.EndDate)
	}
}

func TestStartDateInitializesUnsetEndDate(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.EndDate = ""

	form.SetStartDate("2025-03-01")
	if form.EndDate != "2025-03-01" {
		t.Fatalf("unset end date must be initialized to the start date, got %q", form.EndDate)
	}
}

func TestEndDateBeforeStartDateFailsValidation(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.SetDistrict("Thrissur")
	form.SetOwnerName("Biju Thomas")
	form.StartDate = "2025-01-10"
	form.EndDate = "2025-01-05"

	errs := form.Validate()
	if errs["endDate"] != "End date must be on or after start date" {
		t.Fatalf("expected end-date validation error, got %v", errs)
	}
}

func TestEqualDatesValidate(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.SetDistrict("Thrissur")
	form.SetOwnerName("Suresh Nair")
	form.StartDate = "2025-01-10"
	form.EndDate = "2025-01-10"

	if errs := form.Validate(); len(errs) != 0 {
		t.Fatalf("same-day range must validate, got %v", errs)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.StartDate = ""
	form.EndDate = ""

	errs := form.Validate()
	for _, field := range []string{"district", "ownerName", "startDate", "endDate"} {
		if errs[field] == "" {
			t.Fatalf("expected required-field error for %s, got %v", field, errs)
		}
	}
}

func TestResolveOwner(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.SetOwnerName("Biju Thomas")

	id, err := form.ResolveOwner()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected owner id 11, got %d", id)
	}
}

func TestResolveOwnerNotFound(t *testing.T) {
	form := NewReportForm(reportOwners())
	form.OwnerName = "Nobody"

	_, err := form.ResolveOwner()
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
	if err.Error() != "Owner not found" {
		t.Fatalf("expected message %q, got %q", "Owner not found", err.Error())
	}
}

func TestResolveOwnerScopedByDistrict(t *testing.T) {
	owners := []domain.OwnerUsageSummary{
		{OwnerID: 10, OwnerName: "Anil Kumar", DistrictName: "Kozhikode"},
		{OwnerID: 20, OwnerName: "Anil Kumar", DistrictName: "Kollam"},
	}
	form := NewReportForm(owners)
	form.SetDistrict("Kollam")
	form.SetOwnerName("Anil Kumar")

	id, err := form.ResolveOwner()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if id != 20 {
		t.Fatalf("expected the Kollam owner, got id %d", id)
	}
}

func TestResolveOwnerAmbiguous(t *testing.T) {
	owners := []domain.OwnerUsageSummary{
		{OwnerID: 10, OwnerName: "Anil Kumar", DistrictName: "Kozhikode"},
		{OwnerID: 20, OwnerName: "Anil Kumar", DistrictName: "Kollam"},
	}
	form := NewReportForm(owners)
	form.OwnerName = "Anil Kumar"

	if _, err := form.ResolveOwner(); !errors.Is(err, ErrAmbiguousOwner) {
		t.Fatalf("expected ErrAmbiguousOwner, got %v", err)
	}
}
