package reconcile

import (
	"rollcall/errs"
	"rollcall/models"
	"rollcall/sheet"
)

// Plan is the computed outcome of one reconciliation pass: rows to
// append, per-row updates, and the report handed back to the caller.
// Building a plan performs no writes; the store applies it as one batch.
type Plan struct {
	Inserts []models.SlotRecord
	Updates []Update
	Report  models.SyncReport
}

// Build reconciles an incoming batch against the stored rows. Existing
// rows must be supplied in their stable persisted order; the incoming
// table is walked in original row order. Rows with no category are not
// slots and count as skipped. No single field is a stable identifier, so
// correlation runs over (start, end, category, ordinal) keys derived
// independently on each side.
func Build(existing []models.SlotRecord, table *sheet.Table) (*Plan, error) {
	if table == nil || len(table.Headers) == 0 {
		return nil, &errs.EmptyInputError{}
	}
	if len(table.Rows) == 0 {
		return nil, &errs.EmptyInputError{}
	}

	fm, err := MapHeaders(table.Headers)
	if err != nil {
		return nil, err
	}

	// Index stored rows under freshly derived keys.
	index := make(map[Key]models.SlotRecord, len(existing))
	existingKeys := NewKeyBuilder()
	for _, rec := range existing {
		if rec.Category == "" {
			continue
		}
		k := existingKeys.Next(
			CanonDateTimeString(rec.StartDateTime),
			CanonDateTimeString(rec.EndDateTime),
			rec.Category,
		)
		index[k] = rec
	}

	plan := &Plan{}
	incomingKeys := NewKeyBuilder()
	for _, cells := range table.Rows {
		row := fm.Normalize(cells)
		if row.Category == "" {
			plan.Report.Skipped++
			continue
		}

		k := incomingKeys.Next(row.Start, row.End, row.Category)
		ex, found := index[k]
		if !found {
			plan.Inserts = append(plan.Inserts, recordFromRow(row))
			plan.Report.Inserted++
			continue
		}

		fields, quantity, conflicts := mergeRow(ex, row)
		if len(conflicts) > 0 {
			plan.Report.Conflicts = append(plan.Report.Conflicts, models.FieldConflict{
				Key:    string(k),
				Fields: conflicts,
			})
		}
		if len(fields) > 0 || quantity != nil {
			plan.Updates = append(plan.Updates, Update{Seq: ex.Seq, Fields: fields, Quantity: quantity})
			plan.Report.Updated++
		} else {
			plan.Report.Skipped++
		}
	}

	return plan, nil
}

// KeysFor regenerates the slot key of every record in rows, in order.
// Records with no category get an empty key. Used by the read side to
// join statuses onto rows with the same derivation the import uses.
func KeysFor(rows []models.SlotRecord) []Key {
	kb := NewKeyBuilder()
	keys := make([]Key, len(rows))
	for i, rec := range rows {
		if rec.Category == "" {
			continue
		}
		keys[i] = kb.Next(
			CanonDateTimeString(rec.StartDateTime),
			CanonDateTimeString(rec.EndDateTime),
			rec.Category,
		)
	}
	return keys
}
