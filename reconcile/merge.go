package reconcile

import "rollcall/models"

// Update is one planned change to a stored row, addressed by its seq.
// Fields maps stored field names to their new values; Quantity is set
// separately when the stored quantity was absent.
type Update struct {
	Seq      int64
	Fields   map[string]string
	Quantity *int
}

// mergeField names each mergeable field alongside its stored name. The
// three identity fields (start, end, category) are never merged.
var mergeFields = []struct {
	name     string
	existing func(models.SlotRecord) string
	incoming func(Row) string
}{
	{"signup", func(r models.SlotRecord) string { return r.SignupLabel }, func(r Row) string { return r.SignupLabel }},
	{"location", func(r models.SlotRecord) string { return r.Location }, func(r Row) string { return r.Location }},
	{"first_name", func(r models.SlotRecord) string { return r.FirstName }, func(r Row) string { return r.FirstName }},
	{"last_name", func(r models.SlotRecord) string { return r.LastName }, func(r Row) string { return r.LastName }},
	{"email", func(r models.SlotRecord) string { return r.Email }, func(r Row) string { return r.Email }},
	{"comment", func(r models.SlotRecord) string { return r.Comment }, func(r Row) string { return r.Comment }},
	{"co_leader", func(r models.SlotRecord) string { return r.CoLeader }, func(r Row) string { return r.CoLeader }},
	{"signup_timestamp", func(r models.SlotRecord) string { return r.SignupTimestamp }, func(r Row) string { return r.SignupTimestamp }},
}

// mergeRow applies the fill-blanks policy: a field is written only when
// the stored value is empty and the incoming value is not. A non-empty
// stored value is never overwritten; when the incoming value disagrees
// with it the field name is reported as a conflict instead.
func mergeRow(existing models.SlotRecord, incoming Row) (fields map[string]string, quantity *int, conflicts []string) {
	for _, f := range mergeFields {
		ex, in := f.existing(existing), f.incoming(incoming)
		switch {
		case ex == "" && in != "":
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[f.name] = in
		case ex != "" && in != "" && ex != in:
			conflicts = append(conflicts, f.name)
		}
	}

	// Quantity: only a missing stored value is fillable. A stored 0 is a
	// real value and is kept.
	if existing.Quantity == nil {
		q := incoming.Quantity
		quantity = &q
	} else if incoming.QuantitySet && *existing.Quantity != incoming.Quantity {
		conflicts = append(conflicts, "quantity")
	}

	return fields, quantity, conflicts
}

// recordFromRow builds the stored form of a new incoming row. Seq is
// assigned by the store at write time.
func recordFromRow(r Row) models.SlotRecord {
	q := r.Quantity
	return models.SlotRecord{
		SignupLabel:     r.SignupLabel,
		StartDateTime:   r.Start,
		EndDateTime:     r.End,
		Location:        r.Location,
		Quantity:        &q,
		Category:        r.Category,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Comment:         r.Comment,
		CoLeader:        r.CoLeader,
		SignupTimestamp: r.SignupTimestamp,
	}
}
