package models

import "time"

// SlotRecord is one row of sign-up data as persisted. Seq is assigned on
// insert and gives the stable scan order all key derivation depends on.
type SlotRecord struct {
	Seq             int64  `json:"-" bson:"seq"`
	SignupLabel     string `json:"signup" bson:"signup"`
	StartDateTime   string `json:"start_date_time" bson:"start_date_time"`
	EndDateTime     string `json:"end_date_time" bson:"end_date_time"`
	Location        string `json:"location" bson:"location"`
	Quantity        *int   `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Category        string `json:"category" bson:"category"`
	FirstName       string `json:"first_name" bson:"first_name"`
	LastName        string `json:"last_name" bson:"last_name"`
	Email           string `json:"email" bson:"email"`
	Comment         string `json:"comment" bson:"comment"`
	CoLeader        string `json:"co_leader" bson:"co_leader"`
	SignupTimestamp string `json:"signup_timestamp" bson:"signup_timestamp"`
}

// IsOpenSlot reports whether the row is a placeholder with no signed-up
// person. Open slots are kept for their position but excluded from
// person-level counts.
func (r SlotRecord) IsOpenSlot() bool {
	return r.Email == "" && r.FirstName == ""
}

// QuantityOrDefault returns the stored quantity, or 1 when the source
// never carried one.
func (r SlotRecord) QuantityOrDefault() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// Attendance statuses an admin can set on a slot. None is equivalent to
// absence and is never persisted.
const (
	StatusNone       = "none"
	StatusInBuilding = "in_building"
	StatusLate       = "late"
	StatusCancel     = "cancel"
)

// ValidStatus reports whether s is one of the four allowed values.
func ValidStatus(s string) bool {
	switch s {
	case StatusNone, StatusInBuilding, StatusLate, StatusCancel:
		return true
	}
	return false
}

// StatusEntry is one persisted status, keyed by slot key string.
type StatusEntry struct {
	Key       string    `json:"key" bson:"key"`
	Status    string    `json:"status" bson:"status"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// SlotView is a SlotRecord prepared for the dashboard: key regenerated,
// status joined, open-slot flag computed.
type SlotView struct {
	Key             string `json:"key"`
	SignupLabel     string `json:"signup"`
	StartDateTime   string `json:"start_date_time"`
	EndDateTime     string `json:"end_date_time"`
	Location        string `json:"location"`
	Quantity        int    `json:"quantity"`
	Category        string `json:"category"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Comment         string `json:"comment"`
	CoLeader        string `json:"co_leader"`
	SignupTimestamp string `json:"signup_timestamp"`
	Status          string `json:"status"`
	IsEmptySlot     bool   `json:"is_empty_slot"`
}

// CategorySummary is the per-category block of the dashboard summary.
type CategorySummary struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	InBuilding int    `json:"in_building"`
	Late       int    `json:"late"`
	Cancel     int    `json:"cancel"`
	Pending    int    `json:"pending"`
	OpenSlots  int    `json:"open_slots"`
}

// Summary is the aggregated dashboard view.
type Summary struct {
	Categories []CategorySummary `json:"categories"`
	Totals     CategorySummary   `json:"totals"`
}

// SyncReport is what a sync or CSV import returns to the caller.
type SyncReport struct {
	BatchID   string          `json:"batch_id"`
	Inserted  int             `json:"inserted"`
	Updated   int             `json:"updated"`
	Skipped   int             `json:"skipped"`
	Conflicts []FieldConflict `json:"conflicts,omitempty"`
}

// FieldConflict records fields where stored and incoming values were both
// non-empty but disagreed. The stored value wins; this is diagnostic only.
type FieldConflict struct {
	Key    string   `json:"key"`
	Fields []string `json:"fields"`
}
