package signups

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"rollcall/utils"
)

// ExportPDF renders a printable roster of the current slot listing, with
// a QR code pointing at the live sign-up sheet.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	views, err := h.loadViews(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Sign-Up Roster", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, "Generated "+time.Now().Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if h.SheetURL != "" {
		if qr, err := qrcode.Encode(h.SheetURL, qrcode.Medium, 128); err == nil {
			imgOpts := gofpdf.ImageOptions{ImageType: "png"}
			pdf.RegisterImageOptionsReader("sheetqr", imgOpts, bytes.NewReader(qr))
			pdf.ImageOptions("sheetqr", 165, 12, 30, 30, false, imgOpts, 0, "")
		}
	}

	header := []struct {
		label string
		width float64
	}{
		{"Time", 38},
		{"Category", 30},
		{"Name", 48},
		{"Qty", 12},
		{"Status", 26},
		{"Comment", 26},
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 245)
	for _, hcell := range header {
		pdf.CellFormat(hcell.width, 8, hcell.label, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, v := range views {
		name := v.FirstName
		if v.LastName != "" {
			name = name + " " + v.LastName
		}
		st := v.Status
		if v.IsEmptySlot {
			name = "(open slot)"
			st = "-"
		}
		pdf.CellFormat(header[0].width, 7, v.StartDateTime, "1", 0, "L", false, 0, "")
		pdf.CellFormat(header[1].width, 7, v.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(header[2].width, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(header[3].width, 7, fmt.Sprintf("%d", v.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(header[4].width, 7, st, "1", 0, "L", false, 0, "")
		pdf.CellFormat(header[5].width, 7, v.Comment, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate roster")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=roster.pdf")
	w.Write(buf.Bytes())
}
