package people

import (
	"slices"

	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/util"
)

// FilterPeople returns the people whose name contains query, ignoring case.
// An empty query returns every person. The input is never modified and the
// result never shares its backing array.
func FilterPeople(people []domain.Person, query string) []domain.Person {
	if query == "" {
		return slices.Clone(people)
	}

	filtered := make([]domain.Person, 0, len(people))
	for _, person := range people {
		if util.ContainsFold(person.Name, query) {
			filtered = append(filtered, person)
		}
	}
	return filtered
}
