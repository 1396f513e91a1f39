// internal/intake/handler.go
//
// HTTP handler for the submission endpoint.
//
/*
Context
--------
POST /api/submit accepts one or more form submissions, appends each to
the CSV store, and mirrors each, best-effort, to the sheet webhook and
the optional MySQL mirror.

Failure semantics
-----------------
  • malformed JSON body          → 400 {"ok":false,"error":"Invalid JSON"}
  • wrong method                 → 405 {"ok":false,"error":"Method Not Allowed"}
  • store unopenable/unwritable  → 500 {"ok":false,"error":"Failed to open storage"}
  • non-object batch entries     → skipped, batch continues
  • forward or mirror failure    → swallowed; sheet_updated flag only

The local append is the source of truth.  Forwards run strictly after
Append returns, so the store lock is never held across a network call.
*/
package intake

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mrdlabs/formgate/internal/metrics"
	"github.com/mrdlabs/formgate/internal/requestinfo"
	"github.com/mrdlabs/formgate/internal/sink"
	"github.com/mrdlabs/formgate/internal/store"
)

// Handler wires the store, the optional mirror, and the sheet sink.
type Handler struct {
	store  *store.CSVStore
	mirror *store.Mirror // nil when the mirror is disabled
	sink   *sink.Client
}

// NewHandler returns a ready handler.  mirror may be nil.
func NewHandler(st *store.CSVStore, mirror *store.Mirror, sk *sink.Client) *Handler {
	return &Handler{store: st, mirror: mirror, sink: sk}
}

type submitOK struct {
	OK           bool `json:"ok"`
	Written      int  `json:"written"`
	SheetUpdated bool `json:"sheet_updated"`
}

type submitErr struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ServeHTTP implements the intake contract.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, submitErr{Error: "Method Not Allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, submitErr{Error: "Invalid JSON"})
		return
	}

	batch, skipped, err := ParseBatch(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, submitErr{Error: "Invalid JSON"})
		return
	}
	if skipped > 0 {
		metrics.SubmissionsSkipped.Add(float64(skipped))
	}

	// Derived once per request, shared by every item in the batch.
	clientIP := requestinfo.ClientIP(r)
	userAgent := requestinfo.UserAgent(r)
	now := time.Now()

	records := make([]Record, 0, len(batch))
	rows := make([][]string, 0, len(batch))
	dataJSONs := make([][]byte, 0, len(batch))
	for _, raw := range batch {
		rec := Normalize(raw, now, clientIP, userAgent)
		dataJSON, jerr := rec.PayloadJSON()
		if jerr != nil {
			// Unserializable payloads are item-level failures, not
			// batch aborts.
			zap.S().Warnw("submission payload marshal failed", "err", jerr)
			metrics.SubmissionsSkipped.Inc()
			continue
		}
		records = append(records, rec)
		rows = append(rows, rec.Row(dataJSON))
		dataJSONs = append(dataJSONs, dataJSON)
	}

	written, err := h.store.Append(rows)
	if err != nil {
		zap.S().Errorw("submission store append failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, submitErr{Error: "Failed to open storage"})
		return
	}
	metrics.SubmissionsWritten.Add(float64(written))

	sheetUpdated := h.sideEffects(r.Context(), records[:written], dataJSONs[:written])

	zap.S().Infow("submissions accepted",
		"written", written,
		"skipped", skipped,
		"sheet_updated", sheetUpdated,
		"ip", clientIP,
	)
	writeJSON(w, http.StatusOK, submitOK{OK: true, Written: written, SheetUpdated: sheetUpdated})
}

// sideEffects runs the per-record mirrors after the store lock has been
// released.  Reports whether at least one sheet forward succeeded.
func (h *Handler) sideEffects(ctx context.Context, records []Record, dataJSONs [][]byte) bool {
	sheetUpdated := false
	for i, rec := range records {
		if h.mirror != nil {
			if err := h.mirror.Insert(ctx, rec.FormID, time.Now().UTC(), dataJSONs[i]); err != nil {
				zap.S().Warnw("mirror insert failed", "form_id", rec.FormID, "err", err)
				metrics.MirrorErrors.Inc()
			}
		}

		if h.sink.Forward(ctx, rec.Flatten()) {
			sheetUpdated = true
			metrics.SheetForwards.WithLabelValues("ok").Inc()
		} else {
			metrics.SheetForwards.WithLabelValues("fail").Inc()
		}
	}
	return sheetUpdated
}

// writeJSON emits one JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
