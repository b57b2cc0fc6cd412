package domain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortApartments orders apartments by number the way people read them ("2" before "10",
// "1B" after "1A"), owners before tenants within the same number.
func SortApartments(apts []Apartment) {
	c := collate.New(language.Spanish, collate.Numeric, collate.IgnoreCase)
	sort.SliceStable(apts, func(i, j int) bool {
		if cmp := c.CompareString(apts[i].Number, apts[j].Number); cmp != 0 {
			return cmp < 0
		}
		return apts[i].Occupancy == OccupancyOwner && apts[j].Occupancy == OccupancyTenant
	})
}

// CompareApartmentNumbers is the numeric-aware ordering used by SortApartments.
func CompareApartmentNumbers(a, b string) int {
	return collate.New(language.Spanish, collate.Numeric, collate.IgnoreCase).CompareString(a, b)
}
