// internal/intake/normalize.go
//
// Batch parsing and record normalization for the submission endpoint.
//
/*
Context
--------
The endpoint accepts three body shapes, checked in order:

  1. `{"submission": {…}}`        → batch of one.
  2. `{"submissions": [{…}, …]}`  → batch is the list; non-object
     entries are skipped, not errors.
  3. anything else that is a JSON object → batch of one, the whole body
     treated as raw form data.

Shape 3 is deliberate: the public forms post bare field maps, and
rejecting unknown wrappers would drop real submissions.

Each raw object then normalizes into a fixed Record.  The five routing
keys (timestamp, page, page_source, form_id, session_id) are lifted out
of the payload; everything else the form sent stays in it verbatim.
*/
package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

// ErrInvalidInput reports a body that is not a JSON object.  The handler
// maps it to a 400 with a fixed body.
var ErrInvalidInput = errors.New("invalid input")

// routingKeys are removed from a raw object when it doubles as its own
// payload.  "page" is the legacy alias for "page_source".
var routingKeys = [...]string{"timestamp", "page", "page_source", "form_id", "session_id"}

// Record is one normalized submission, shaped exactly like a store row.
type Record struct {
	Timestamp  string
	PageSource string
	FormID     string
	SessionID  string
	ClientIP   string
	UserAgent  string
	Payload    map[string]any
}

// ParseBatch decodes raw JSON into a list of raw submission objects,
// also reporting how many list entries were skipped as non-objects.
func ParseBatch(body []byte) (batch []map[string]any, skipped int, err error) {
	var top map[string]any
	if jerr := json.Unmarshal(body, &top); jerr != nil {
		return nil, 0, ErrInvalidInput
	}

	if sub, ok := top["submission"].(map[string]any); ok {
		return []map[string]any{sub}, 0, nil
	}

	if list, ok := top["submissions"].([]any); ok {
		batch = make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				batch = append(batch, m)
			} else {
				skipped++
			}
		}
		return batch, skipped, nil
	}

	return []map[string]any{top}, 0, nil
}

// Normalize builds a Record from one raw object.  clientIP and userAgent
// are derived once per request, not per item.
func Normalize(raw map[string]any, now time.Time, clientIP, userAgent string) Record {
	rec := Record{
		Timestamp:  stringField(raw, "timestamp"),
		PageSource: stringField(raw, "page_source"),
		FormID:     stringField(raw, "form_id"),
		SessionID:  stringField(raw, "session_id"),
		ClientIP:   clientIP,
		UserAgent:  userAgent,
	}
	// JSON null counts as absent for fallback purposes.
	if v, present := raw["timestamp"]; !present || v == nil {
		rec.Timestamp = now.UTC().Format(time.RFC3339)
	}
	if v, present := raw["page_source"]; !present || v == nil {
		rec.PageSource = stringField(raw, "page")
	}

	if data, ok := raw["data"].(map[string]any); ok {
		rec.Payload = data
	} else {
		rec.Payload = maps.Clone(raw)
		for _, k := range routingKeys {
			delete(rec.Payload, k)
		}
	}
	return rec
}

// PayloadJSON serializes the payload compactly, leaving path separators
// and non-ASCII characters unescaped so the stored JSON matches what the
// form sent.
func (r Record) PayloadJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Payload); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Row renders the record as one store row, in Header order.
func (r Record) Row(dataJSON []byte) []string {
	return []string{
		r.Timestamp,
		r.PageSource,
		r.FormID,
		r.SessionID,
		r.ClientIP,
		r.UserAgent,
		string(dataJSON),
	}
}

// Flatten merges payload fields with the routing fields for the sheet
// forward.  Routing fields win on key collisions.
func (r Record) Flatten() map[string]any {
	flat := make(map[string]any, len(r.Payload)+6)
	maps.Copy(flat, r.Payload)
	flat["timestamp"] = r.Timestamp
	flat["page_source"] = r.PageSource
	flat["form_id"] = r.FormID
	flat["session_id"] = r.SessionID
	flat["ip"] = r.ClientIP
	flat["user_agent"] = r.UserAgent
	return flat
}

// stringField returns the field as a string when present; numbers and
// booleans are stringified the way the legacy endpoint cast them.
func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
