package reconcile

import (
	"errors"
	"testing"

	"rollcall/errs"
	"rollcall/models"
	"rollcall/sheet"
)

func intp(n int) *int { return &n }

func testTable(rows ...[]string) *sheet.Table {
	return &sheet.Table{
		Headers: []string{"Start Date/Time", "End Date/Time", "Item", "First Name", "Last Name", "Email", "Quantity", "Comment"},
		Rows:    rows,
	}
}

// applyPlan materializes a plan the way the store would, so reconciling
// can be run a second time against the result.
func applyPlan(existing []models.SlotRecord, plan *Plan) []models.SlotRecord {
	out := make([]models.SlotRecord, len(existing))
	copy(out, existing)

	for _, u := range plan.Updates {
		for i := range out {
			if out[i].Seq != u.Seq {
				continue
			}
			for name, val := range u.Fields {
				switch name {
				case "signup":
					out[i].SignupLabel = val
				case "location":
					out[i].Location = val
				case "first_name":
					out[i].FirstName = val
				case "last_name":
					out[i].LastName = val
				case "email":
					out[i].Email = val
				case "comment":
					out[i].Comment = val
				case "co_leader":
					out[i].CoLeader = val
				case "signup_timestamp":
					out[i].SignupTimestamp = val
				}
			}
			if u.Quantity != nil {
				q := *u.Quantity
				out[i].Quantity = &q
			}
		}
	}

	seq := int64(0)
	for _, r := range out {
		if r.Seq > seq {
			seq = r.Seq
		}
	}
	for _, rec := range plan.Inserts {
		seq++
		rec.Seq = seq
		out = append(out, rec)
	}
	return out
}

func TestKeyBuilderOrdinals(t *testing.T) {
	kb := NewKeyBuilder()
	k1 := kb.Next("2/16/2026 12:00", "2/16/2026 12:15", "6th Grade")
	k2 := kb.Next("2/16/2026 12:00", "2/16/2026 12:15", "6th Grade")
	k3 := kb.Next("2/16/2026 12:00", "2/16/2026 12:15", "7th Grade")
	if k1 == k2 {
		t.Errorf("same group must get distinct ordinals: %q", k1)
	}
	if k1 != "2/16/2026 12:00|2/16/2026 12:15|6th Grade|1" {
		t.Errorf("k1 = %q", k1)
	}
	if k2 != "2/16/2026 12:00|2/16/2026 12:15|6th Grade|2" {
		t.Errorf("k2 = %q", k2)
	}
	if k3 != "2/16/2026 12:00|2/16/2026 12:15|7th Grade|1" {
		t.Errorf("k3 = %q", k3)
	}
}

func TestBuildFillsOpenSlot(t *testing.T) {
	existing := []models.SlotRecord{{
		Seq:           1,
		StartDateTime: "2/16/2026 12:00",
		EndDateTime:   "2/16/2026 12:15",
		Category:      "6th Grade",
		Quantity:      intp(1),
	}}

	plan, err := Build(existing, testTable(
		[]string{"2/16/2026 12:00:00", "2/16/2026 12:15:00", "6th Grade", "Alice", "Smith", "a@x.com", "1", ""},
	))
	if err != nil {
		t.Fatal(err)
	}

	if plan.Report.Updated != 1 || plan.Report.Inserted != 0 || plan.Report.Skipped != 0 {
		t.Fatalf("report = %+v", plan.Report)
	}
	if len(plan.Updates) != 1 {
		t.Fatalf("updates = %d", len(plan.Updates))
	}
	u := plan.Updates[0]
	if u.Seq != 1 {
		t.Errorf("update seq = %d", u.Seq)
	}
	if u.Fields["email"] != "a@x.com" || u.Fields["first_name"] != "Alice" || u.Fields["last_name"] != "Smith" {
		t.Errorf("fields = %v", u.Fields)
	}

	after := applyPlan(existing, plan)
	if after[0].IsOpenSlot() {
		t.Error("slot should no longer be open after fill")
	}
}

func TestBuildIdempotent(t *testing.T) {
	table := testTable(
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "Alice", "Smith", "a@x.com", "1", ""},
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "", "", "", "", ""},
		[]string{"2/16/2026 12:30", "2/16/2026 12:45", "7th Grade", "Bob", "Jones", "b@x.com", "2", "early"},
	)

	plan, err := Build(nil, table)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Report.Inserted != 3 {
		t.Fatalf("first pass inserted = %d", plan.Report.Inserted)
	}

	store := applyPlan(nil, plan)
	plan2, err := Build(store, table)
	if err != nil {
		t.Fatal(err)
	}
	if plan2.Report.Inserted != 0 || plan2.Report.Updated != 0 {
		t.Fatalf("second pass must be all skipped, got %+v", plan2.Report)
	}
	if plan2.Report.Skipped != 3 {
		t.Errorf("skipped = %d", plan2.Report.Skipped)
	}
}

func TestBuildNeverOverwrites(t *testing.T) {
	existing := []models.SlotRecord{{
		Seq:           1,
		StartDateTime: "2/16/2026 12:00",
		EndDateTime:   "2/16/2026 12:15",
		Category:      "6th Grade",
		FirstName:     "Alice",
		LastName:      "Smith",
		Email:         "a@x.com",
		Comment:       "front desk",
		Quantity:      intp(1),
	}}

	plan, err := Build(existing, testTable(
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "Mallory", "Evil", "m@x.com", "5", "back door"},
	))
	if err != nil {
		t.Fatal(err)
	}

	if len(plan.Updates) != 0 {
		t.Fatalf("no field may be overwritten, got updates %+v", plan.Updates)
	}
	if plan.Report.Updated != 0 || plan.Report.Skipped != 1 {
		t.Errorf("report = %+v", plan.Report)
	}
	if len(plan.Report.Conflicts) != 1 {
		t.Fatalf("conflicts = %+v", plan.Report.Conflicts)
	}
	conf := plan.Report.Conflicts[0]
	want := map[string]bool{"first_name": true, "last_name": true, "email": true, "comment": true, "quantity": true}
	if len(conf.Fields) != len(want) {
		t.Errorf("conflict fields = %v", conf.Fields)
	}
	for _, f := range conf.Fields {
		if !want[f] {
			t.Errorf("unexpected conflict field %q", f)
		}
	}
}

func TestBuildPositionalCorrelation(t *testing.T) {
	// Two open slots in the same group: the incoming batch fills only
	// the second one. Position, not content, decides which row changes.
	existing := []models.SlotRecord{
		{Seq: 1, StartDateTime: "2/16/2026 12:00", EndDateTime: "2/16/2026 12:15", Category: "6th Grade", Quantity: intp(1)},
		{Seq: 2, StartDateTime: "2/16/2026 12:00", EndDateTime: "2/16/2026 12:15", Category: "6th Grade", Quantity: intp(1)},
	}

	plan, err := Build(existing, testTable(
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "", "", "", "", ""},
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "Alice", "Smith", "a@x.com", "", ""},
	))
	if err != nil {
		t.Fatal(err)
	}

	if plan.Report.Updated != 1 || plan.Report.Skipped != 1 || plan.Report.Inserted != 0 {
		t.Fatalf("report = %+v", plan.Report)
	}
	if plan.Updates[0].Seq != 2 {
		t.Errorf("wrong row updated: seq %d", plan.Updates[0].Seq)
	}
}

func TestBuildSkipsEmptyCategory(t *testing.T) {
	plan, err := Build(nil, testTable(
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "", "Alice", "Smith", "a@x.com", "", ""},
	))
	if err != nil {
		t.Fatal(err)
	}
	if plan.Report.Skipped != 1 || plan.Report.Inserted != 0 {
		t.Errorf("report = %+v", plan.Report)
	}
	if len(plan.Inserts) != 0 {
		t.Errorf("no insert for a row without a category")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	var ee *errs.EmptyInputError
	if _, err := Build(nil, nil); !errors.As(err, &ee) {
		t.Errorf("nil table: expected EmptyInputError, got %v", err)
	}
	if _, err := Build(nil, testTable()); !errors.As(err, &ee) {
		t.Errorf("no rows: expected EmptyInputError, got %v", err)
	}
}

func TestBuildSchemaError(t *testing.T) {
	table := &sheet.Table{
		Headers: []string{"Start Date/Time", "End Date/Time", "Email"},
		Rows:    [][]string{{"2/16/2026 12:00", "2/16/2026 12:15", "a@x.com"}},
	}
	var se *errs.SchemaError
	if _, err := Build(nil, table); !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestBuildQuantityPolicy(t *testing.T) {
	// A stored zero is a real value and is never overwritten; a missing
	// stored quantity is filled.
	existing := []models.SlotRecord{
		{Seq: 1, StartDateTime: "2/16/2026 12:00", EndDateTime: "2/16/2026 12:15", Category: "6th Grade", Quantity: intp(0)},
		{Seq: 2, StartDateTime: "2/16/2026 12:00", EndDateTime: "2/16/2026 12:15", Category: "6th Grade"},
	}

	plan, err := Build(existing, testTable(
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "", "", "", "3", ""},
		[]string{"2/16/2026 12:00", "2/16/2026 12:15", "6th Grade", "", "", "", "3", ""},
	))
	if err != nil {
		t.Fatal(err)
	}

	if plan.Report.Updated != 1 || plan.Report.Skipped != 1 {
		t.Fatalf("report = %+v", plan.Report)
	}
	u := plan.Updates[0]
	if u.Seq != 2 || u.Quantity == nil || *u.Quantity != 3 {
		t.Errorf("update = %+v", u)
	}
	if len(plan.Report.Conflicts) != 1 || plan.Report.Conflicts[0].Fields[0] != "quantity" {
		t.Errorf("conflicts = %+v", plan.Report.Conflicts)
	}
}

func TestBuildSecondsInsensitive(t *testing.T) {
	existing := []models.SlotRecord{{
		Seq:           1,
		StartDateTime: "2/16/2026 12:00",
		EndDateTime:   "2/16/2026 12:15",
		Category:      "6th Grade",
		Email:         "a@x.com",
		FirstName:     "Alice",
		Quantity:      intp(1),
	}}

	plan, err := Build(existing, testTable(
		[]string{"2/16/2026 12:00:00", "2/16/2026 12:15:00", "6th Grade", "Alice", "", "a@x.com", "1", ""},
	))
	if err != nil {
		t.Fatal(err)
	}
	if plan.Report.Inserted != 0 {
		t.Fatalf("seconds-only difference must not create a new row: %+v", plan.Report)
	}
}

func TestKeysForMatchesImportDerivation(t *testing.T) {
	rows := []models.SlotRecord{
		{Seq: 1, StartDateTime: "2/16/2026 12:00:00", EndDateTime: "2/16/2026 12:15:00", Category: "6th Grade"},
		{Seq: 2, StartDateTime: "2/16/2026 12:00", EndDateTime: "2/16/2026 12:15", Category: "6th Grade"},
		{Seq: 3, StartDateTime: "", EndDateTime: "", Category: ""},
	}
	keys := KeysFor(rows)
	if keys[0] != "2/16/2026 12:00|2/16/2026 12:15|6th Grade|1" {
		t.Errorf("keys[0] = %q", keys[0])
	}
	if keys[1] != "2/16/2026 12:00|2/16/2026 12:15|6th Grade|2" {
		t.Errorf("keys[1] = %q", keys[1])
	}
	if keys[2] != "" {
		t.Errorf("categoryless row must get no key, got %q", keys[2])
	}
}
