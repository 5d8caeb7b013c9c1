package domain

import "strings"

// District maps a district name to its server-side id
type District struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DistrictList is the single shared name/id lookup. It is sourced from the
// districts endpoint; DefaultDistricts covers the offline case.
type DistrictList []District

// DefaultDistricts mirrors the backend's seed data and is used only when the
// districts endpoint has not been fetched yet.
func DefaultDistricts() DistrictList {
	return DistrictList{
		{ID: 1, Name: "Thiruvananthapuram"},
		{ID: 2, Name: "Kollam"},
		{ID: 3, Name: "Pathanamthitta"},
		{ID: 4, Name: "Alappuzha"},
		{ID: 5, Name: "Kottayam"},
		{ID: 6, Name: "Idukki"},
		{ID: 7, Name: "Ernakulam"},
		{ID: 8, Name: "Thrissur"},
		{ID: 9, Name: "Palakkad"},
		{ID: 10, Name: "Malappuram"},
		{ID: 11, Name: "Kozhikode"},
		{ID: 12, Name: "Wayanad"},
		{ID: 13, Name: "Kannur"},
		{ID: 14, Name: "Kasaragod"},
	}
}

// Names returns the district names in list order.
func (l DistrictList) Names() []string {
	names := make([]string, 0, len(l))
	for _, d := range l {
		names = append(names, d.Name)
	}
	return names
}

// IDByName resolves a district name to its id by exact, case-insensitive match.
func (l DistrictList) IDByName(name string) (int64, bool) {
	for _, d := range l {
		if strings.EqualFold(d.Name, name) {
			return d.ID, true
		}
	}
	return 0, false
}

// ContainsQuery reports whether the query is a case-insensitive substring of
// any district name. The rolls-usage filter uses this to decide whether a
// search term should be treated as a district search.
func (l DistrictList) ContainsQuery(query string) bool {
	q := strings.ToLower(query)
	for _, d := range l {
		if strings.Contains(strings.ToLower(d.Name), q) {
			return true
		}
	}
	return false
}
