package entity

import "github.com/penwyp/go-virus-feed/internal/core/model"

// Reduce keeps the first record seen for every entity, in the order entities
// first appear in details.
func Reduce(details []model.DetailRecord) []model.DetailRecord {
	seen := make(map[model.EntityID]struct{}, len(details))
	reps := make([]model.DetailRecord, 0)

	for _, record := range details {
		if _, ok := seen[record.EntityID]; ok {
			continue
		}
		seen[record.EntityID] = struct{}{}
		reps = append(reps, record)
	}

	return reps
}
