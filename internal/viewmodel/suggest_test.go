package viewmodel

import (
	"reflect"
	"testing"

	"github.com/ajmalkv/rollsops/internal/domain"
)

func suggestOwners() []domain.OwnerUsageSummary {
	return []domain.OwnerUsageSummary{
		{OwnerName: "Anil Kumar", DistrictName: "Kozhikode"},
		{OwnerName: "Biju Thomas", DistrictName: "Thrissur"},
		{OwnerName: "Suresh Nair", DistrictName: "Thrissur"},
		{OwnerName: "Ravi Menon", DistrictName: "Kozhikode"},
	}
}

func TestDistrictSuggestionsDeduplicatedAndStable(t *testing.T) {
	owners := suggestOwners()

	first := DistrictSuggestions(owners, "")
	second := DistrictSuggestions(owners, "")

	want := []string{"Kozhikode", "Thrissur"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("expected %v, got %v", want, first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-deriving from the same input must yield the same list: %v vs %v", first, second)
	}
}

func TestDistrictSuggestionsFilterByTypedText(t *testing.T) {
	got := DistrictSuggestions(suggestOwners(), "koz")
	if !reflect.DeepEqual(got, []string{"Kozhikode"}) {
		t.Fatalf("expected [Kozhikode], got %v", got)
	}
}

func TestOwnerSuggestionsScopedToDistrict(t *testing.T) {
	got := OwnerSuggestions(suggestOwners(), "Thrissur", "")
	want := []string{"Biju Thomas", "Suresh Nair"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOwnerSuggestionsAllDistrictsWhenNoneSelected(t *testing.T) {
	got := OwnerSuggestions(suggestOwners(), "", "a")
	// Case-insensitive substring on the typed text across all districts.
	want := []string{"Anil Kumar", "Biju Thomas", "Suresh Nair", "Ravi Menon"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOwnerSuggestionsTypedFilter(t *testing.T) {
	got := OwnerSuggestions(suggestOwners(), "Kozhikode", "ravi")
	if !reflect.DeepEqual(got, []string{"Ravi Menon"}) {
		t.Fatalf("expected [Ravi Menon], got %v", got)
	}
}
