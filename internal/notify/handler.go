// internal/notify/handler.go
//
// HTTP handler for the notification endpoint.
//
/*
Context
--------
POST /api/send-email renders a template and hands the result to the
configured mail transport.  The front-end calls it cross-origin, so the
handler answers CORS preflights and sets the allow headers on every
response.

Failure semantics
-----------------
  • wrong method            → 405 {"success":false,"error":"Method Not Allowed"}
  • malformed JSON          → 400 {"success":false,"error":"Invalid JSON"}
  • missing to/subject      → 400 {"success":false,"error":"Missing required fields"}
  • transport failure       → 200 {"success":false,"error":"Failed to send email"}

Transport failures are logical failures, not HTTP errors: the caller
gets a boolean and may retry at its own discretion.  No log entry is
written for a failed send.
*/
package notify

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mrdlabs/formgate/internal/mail"
	"github.com/mrdlabs/formgate/internal/metrics"
)

var validate = validator.New()

// EmailRequest is the wire shape of one send request.  The template
// name is lenient; unknown values fall back to the default template.
type EmailRequest struct {
	To       string         `json:"to"       validate:"required"`
	From     string         `json:"from"`
	Subject  string         `json:"subject"  validate:"required"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// Handler wires the transport, the bounded send log, and the operator
// default sender address.
type Handler struct {
	transport   mail.Transport
	sendLog     *mail.SendLog
	defaultFrom string
}

// NewHandler returns a ready handler.
func NewHandler(t mail.Transport, log *mail.SendLog, defaultFrom string) *Handler {
	return &Handler{transport: t, sendLog: log, defaultFrom: defaultFrom}
}

type sendOK struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type sendErr struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ServeHTTP implements the dispatch contract.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, sendErr{Error: "Method Not Allowed"})
		return
	}

	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, sendErr{Error: "Invalid JSON"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, sendErr{Error: "Missing required fields"})
		return
	}

	if req.From == "" {
		req.From = h.defaultFrom
	}
	tmpl := mail.ParseTemplate(req.Template)

	now := time.Now()
	html, err := mail.Render(tmpl, req.Data, now)
	if err != nil {
		// Template data never fails rendering in practice; treat it as
		// a transport-shaped failure rather than leaking detail.
		zap.S().Errorw("email render failed", "template", tmpl, "err", err)
		writeJSON(w, http.StatusOK, sendErr{Error: "Failed to send email"})
		return
	}

	msg := mail.Message{To: req.To, From: req.From, Subject: req.Subject, HTML: html}
	if err := h.transport.Send(r.Context(), msg); err != nil {
		zap.S().Warnw("email send failed", "to", req.To, "template", tmpl, "err", err)
		metrics.EmailsFailed.Inc()
		writeJSON(w, http.StatusOK, sendErr{Error: "Failed to send email"})
		return
	}

	metrics.EmailsSent.Inc()
	if err := h.sendLog.Record(req.To, req.Subject, tmpl, now); err != nil {
		// The log is best-effort; the email already went out.
		zap.S().Warnw("email log append failed", "err", err)
	}

	zap.S().Infow("email sent", "to", req.To, "template", tmpl)
	writeJSON(w, http.StatusOK, sendOK{Success: true, Message: "Email sent successfully"})
}

// writeJSON emits one JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
