package signups

import (
	"sort"
	"strings"

	"rollcall/models"
	"rollcall/reconcile"
)

// BuildViews regenerates slot keys over the stored rows, joins the
// status overlay, and sorts for display. Rows with no category are not
// slots and are dropped.
func BuildViews(records []models.SlotRecord, statuses map[string]string) []models.SlotView {
	keys := reconcile.KeysFor(records)

	views := make([]models.SlotView, 0, len(records))
	for i, rec := range records {
		if rec.Category == "" {
			continue
		}
		st, ok := statuses[string(keys[i])]
		if !ok {
			st = models.StatusNone
		}
		views = append(views, models.SlotView{
			Key:             string(keys[i]),
			SignupLabel:     rec.SignupLabel,
			StartDateTime:   reconcile.CanonDateTimeString(rec.StartDateTime),
			EndDateTime:     reconcile.CanonDateTimeString(rec.EndDateTime),
			Location:        rec.Location,
			Quantity:        rec.QuantityOrDefault(),
			Category:        rec.Category,
			FirstName:       rec.FirstName,
			LastName:        rec.LastName,
			Email:           rec.Email,
			Comment:         rec.Comment,
			CoLeader:        rec.CoLeader,
			SignupTimestamp: rec.SignupTimestamp,
			Status:          st,
			IsEmptySlot:     rec.IsOpenSlot(),
		})
	}

	sortViews(views)
	return views
}

// Listing order: start time ascending, then category, then open slots
// after filled slots within the same group, then comment/name
// case-insensitive.
func sortViews(views []models.SlotView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]

		if a.StartDateTime != b.StartDateTime {
			at, aok := reconcile.ParseCanonTime(a.StartDateTime)
			bt, bok := reconcile.ParseCanonTime(b.StartDateTime)
			switch {
			case aok && bok:
				return at.Before(bt)
			case aok != bok:
				// free-form times sort after real ones
				return aok
			default:
				return strings.ToLower(a.StartDateTime) < strings.ToLower(b.StartDateTime)
			}
		}

		if a.Category != b.Category {
			return a.Category < b.Category
		}

		if a.IsEmptySlot != b.IsEmptySlot {
			return !a.IsEmptySlot
		}

		an := strings.ToLower(a.Comment + " " + a.FirstName + " " + a.LastName)
		bn := strings.ToLower(b.Comment + " " + b.FirstName + " " + b.LastName)
		return an < bn
	})
}
