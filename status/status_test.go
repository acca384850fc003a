package status

import (
	"context"
	"errors"
	"testing"

	"rollcall/errs"
)

func TestSetRejectsBadInput(t *testing.T) {
	// Validation happens before any store access, so a nil client is
	// fine here.
	o := NewOverlay(nil)

	var ve *errs.ValidationError
	if err := o.Set(context.Background(), "k", "bogus"); !errors.As(err, &ve) {
		t.Errorf("bogus status: expected ValidationError, got %v", err)
	}
	if err := o.Set(context.Background(), "", "late"); !errors.As(err, &ve) {
		t.Errorf("empty key: expected ValidationError, got %v", err)
	}
}
