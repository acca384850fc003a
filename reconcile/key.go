package reconcile

import "fmt"

// Key identifies one logical slot: canonical start, canonical end,
// category, and the 1-based ordinal of the record among same-group
// records in scan order. Keys are derived fresh on every pass and never
// persisted; only a status value is stored against the string form.
//
// Position keying means a store reordered out of its original row order
// can re-attach old statuses to the wrong slot. Accepted limitation:
// email is frequently blank (open slots) so no field-based identity can
// disambiguate rows sharing a time window and category.
type Key string

// KeyBuilder assigns ordinals with a running counter per
// (start, end, category) group. One builder per pass: the stored-side
// and incoming-side counters are independent and correlate only through
// equal tuples.
type KeyBuilder struct {
	counts map[string]int
}

func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{counts: make(map[string]int)}
}

// Next consumes the next ordinal in the (start, end, category) group and
// returns the resulting key. Callers must skip records with an empty
// category before calling; those are not slots and consume no ordinal.
func (b *KeyBuilder) Next(start, end, category string) Key {
	group := start + "|" + end + "|" + category
	b.counts[group]++
	return Key(fmt.Sprintf("%s|%d", group, b.counts[group]))
}
