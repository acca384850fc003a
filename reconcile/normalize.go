// Package reconcile implements the import core: normalizing raw sheet
// rows, deriving position-based slot keys, and merging incoming batches
// into stored rows without ever overwriting existing data.
package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rollcall/errs"
)

type field int

const (
	fieldSignup field = iota
	fieldStart
	fieldEnd
	fieldLocation
	fieldQuantity
	fieldCategory
	fieldFirstName
	fieldLastName
	fieldEmail
	fieldComment
	fieldCoLeader
	fieldTimestamp
)

// headerRule maps one canonical field to the header spellings that
// select it. Headers are matched lowercased and trimmed, exact names
// first, then substrings.
type headerRule struct {
	field  field
	exact  []string
	substr []string
}

var headerRules = []headerRule{
	{field: fieldSignup, exact: []string{"sign up", "sign-up", "sign ups", "sign-ups", "signup"}},
	{field: fieldStart, substr: []string{"start date"}},
	{field: fieldEnd, substr: []string{"end date"}},
	{field: fieldLocation, exact: []string{"location"}},
	{field: fieldQuantity, exact: []string{"quantity", "qty"}},
	{field: fieldCategory, exact: []string{"item", "category"}},
	{field: fieldFirstName, substr: []string{"first name", "firstname"}},
	{field: fieldLastName, substr: []string{"last name", "lastname"}},
	{field: fieldEmail, substr: []string{"email"}},
	{field: fieldComment, substr: []string{"comment"}},
	{field: fieldCoLeader, substr: []string{"co-leader", "co leader", "coleader"}},
	{field: fieldTimestamp, substr: []string{"timestamp", "sign up date"}},
}

// FieldMap is the column layout of one incoming batch, built once per
// import from its header row.
type FieldMap struct {
	idx map[field]int
}

// MapHeaders resolves human-authored column headers against the rule
// table. The category ("Item") column is the one identity column that
// must exist; its absence is a SchemaError.
func MapHeaders(headers []string) (*FieldMap, error) {
	fm := &FieldMap{idx: make(map[field]int)}
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		for _, rule := range headerRules {
			if _, taken := fm.idx[rule.field]; taken {
				continue
			}
			if rule.matches(name) {
				fm.idx[rule.field] = i
				break
			}
		}
	}
	if _, ok := fm.idx[fieldCategory]; !ok {
		return nil, &errs.SchemaError{Missing: "Item", Headers: headers}
	}
	return fm, nil
}

func (r headerRule) matches(name string) bool {
	for _, e := range r.exact {
		if name == e {
			return true
		}
	}
	for _, s := range r.substr {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// Row is one normalized incoming record: all fields trimmed strings,
// date-times canonicalized, quantity parsed. QuantitySet distinguishes a
// real source value from the default of 1.
type Row struct {
	SignupLabel     string
	Start           string
	End             string
	Location        string
	Category        string
	FirstName       string
	LastName        string
	Email           string
	Comment         string
	CoLeader        string
	SignupTimestamp string
	Quantity        int
	QuantitySet     bool
}

// Normalize maps one raw data row through the field map into canonical
// shape. Pure function of its input.
func (fm *FieldMap) Normalize(cells []string) Row {
	get := func(f field) string {
		i, ok := fm.idx[f]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	row := Row{
		SignupLabel:     get(fieldSignup),
		Start:           CanonDateTimeString(get(fieldStart)),
		End:             CanonDateTimeString(get(fieldEnd)),
		Location:        get(fieldLocation),
		Category:        get(fieldCategory),
		FirstName:       get(fieldFirstName),
		LastName:        get(fieldLastName),
		Email:           get(fieldEmail),
		Comment:         get(fieldComment),
		CoLeader:        get(fieldCoLeader),
		SignupTimestamp: get(fieldTimestamp),
	}

	row.Quantity = 1
	if q := get(fieldQuantity); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			row.Quantity = n
			row.QuantitySet = true
		}
	}
	return row
}

// CanonTime renders a structured date-time in the canonical form all key
// equality is based on: M/D/YYYY H:MM, no zero-padded month/day/hour,
// 24-hour clock, no seconds.
func CanonTime(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d %d:%02d", t.Month(), t.Day(), t.Year(), t.Hour(), t.Minute())
}

var dateTimeRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2})(?::\d{1,2})?$`)

// CanonDateTimeString canonicalizes a date-time string: values shaped
// like M/D/YYYY H:MM[:SS] lose their seconds, anything else passes
// through trimmed and unchanged.
func CanonDateTimeString(s string) string {
	s = strings.TrimSpace(s)
	if m := dateTimeRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// ParseCanonTime turns a canonical date-time string back into a
// time.Time for sorting. ok is false for free-form values.
func ParseCanonTime(s string) (time.Time, bool) {
	t, err := time.Parse("1/2/2006 15:04", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
