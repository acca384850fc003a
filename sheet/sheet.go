// Package sheet is the incoming-row boundary: it turns a CSV upload or a
// remote sheet export into an ordered table of string fields. Both
// sources look identical to the reconciliation core once parsed.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"time"

	"rollcall/errs"
)

// Table is one parsed batch: a header row plus data rows in original
// order. Rows are never persisted beyond their processing.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseCSV reads an entire CSV stream into a Table. Ragged rows are
// tolerated: short rows are padded when indexed by the field map.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &errs.EmptyInputError{}
		}
		return nil, err
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

const maxRedirects = 5

// Fetch pulls the published sheet export from url and parses it. A
// non-200 response or a redirect chain longer than maxRedirects fails
// with UpstreamFetchError.
func Fetch(ctx context.Context, url string) (*Table, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.UpstreamFetchError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &errs.UpstreamFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.UpstreamFetchError{URL: url, Status: resp.StatusCode}
	}

	return ParseCSV(resp.Body)
}

// Cell returns the idx-th field of row, or "" when the row is short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
