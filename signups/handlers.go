package signups

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"rollcall/db"
	"rollcall/errs"
	"rollcall/live"
	"rollcall/models"
	"rollcall/sheet"
	"rollcall/status"
	"rollcall/utils"
)

// Handler bundles the dependencies the signup routes need. Built once in
// main; nothing here is a package global.
type Handler struct {
	Store    *db.Store
	Overlay  *status.Overlay
	Hub      *live.Hub
	SheetURL string
}

// respondAppError maps taxonomy errors to their HTTP codes and hides
// anything unexpected behind a generic 500.
func respondAppError(w http.ResponseWriter, err error) {
	code := errs.HTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Println("internal error:", err)
		utils.RespondWithError(w, code, "internal error")
		return
	}
	utils.RespondWithError(w, code, err.Error())
}

func (h *Handler) loadViews(ctx context.Context, category string) ([]models.SlotView, error) {
	rows, err := h.Store.LoadRows(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := h.Overlay.Map(ctx)
	if err != nil {
		return nil, err
	}

	views := BuildViews(rows, statuses)
	if category == "" {
		return views, nil
	}
	filtered := make([]models.SlotView, 0, len(views))
	for _, v := range views {
		if v.Category == category {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// List returns the status-joined slot listing, optionally filtered by
// ?category=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	views, err := h.loadViews(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"signups": views,
		"count":   len(views),
	})
}

// Summary returns the aggregated per-category counts.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	views, err := h.loadViews(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, BuildSummary(views))
}

// SetStatus records one attendance status against a slot key. "none"
// clears the entry. Admin only (the route is gated).
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Key    string `json:"key"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Overlay.Set(ctx, input.Key, input.Status); err != nil {
		respondAppError(w, err)
		return
	}

	h.Hub.BroadcastStatus(input.Key, input.Status)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"key":    input.Key,
		"status": input.Status,
	})
}

// Sync pulls the configured sheet export and reconciles it into the
// store. The fetch runs before the store takes its reconcile lock.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.SheetURL == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "SHEET_URL is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	table, err := sheet.Fetch(ctx, h.SheetURL)
	if err != nil {
		respondAppError(w, err)
		return
	}

	report, err := h.Store.Sync(ctx, table)
	if err != nil {
		respondAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

// ImportCSV reconciles an uploaded CSV file through the same path a
// sheet sync uses.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing CSV file upload")
		return
	}
	defer file.Close()

	table, err := sheet.ParseCSV(file)
	if err != nil {
		respondAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := h.Store.Sync(ctx, table)
	if err != nil {
		respondAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}
