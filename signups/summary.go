package signups

import (
	"sort"

	"rollcall/models"
)

// BuildSummary derives per-category and total counts from a
// status-joined row set. Open slots are counted separately and excluded
// from the status breakdown. Pure function; nil input gives an empty
// summary.
func BuildSummary(views []models.SlotView) models.Summary {
	byCategory := make(map[string]*models.CategorySummary)

	for _, v := range views {
		cs := byCategory[v.Category]
		if cs == nil {
			cs = &models.CategorySummary{Category: v.Category}
			byCategory[v.Category] = cs
		}

		if v.IsEmptySlot {
			cs.OpenSlots++
			continue
		}

		cs.Total++
		switch v.Status {
		case models.StatusInBuilding:
			cs.InBuilding++
		case models.StatusLate:
			cs.Late++
		case models.StatusCancel:
			cs.Cancel++
		default:
			cs.Pending++
		}
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	out := models.Summary{Categories: make([]models.CategorySummary, 0, len(names))}
	for _, name := range names {
		cs := *byCategory[name]
		out.Categories = append(out.Categories, cs)
		out.Totals.Total += cs.Total
		out.Totals.InBuilding += cs.InBuilding
		out.Totals.Late += cs.Late
		out.Totals.Cancel += cs.Cancel
		out.Totals.Pending += cs.Pending
		out.Totals.OpenSlots += cs.OpenSlots
	}
	return out
}
