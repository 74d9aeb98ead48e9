package storage

import (
	"sort"

	"github.com/MikhailRaia/utility-suite/internal/model"
)

// NewestFirst sorts links by creation time descending, ties broken by id, and
// truncates to limit when limit is positive.
func NewestFirst(links []model.Shortlink, limit int) []model.Shortlink {
	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ID < links[j].ID
		}
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	return links
}
