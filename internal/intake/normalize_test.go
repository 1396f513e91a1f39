// internal/intake/normalize_test.go
//
// Unit-tests for batch parsing and record normalization.
//
// Context
// -------
// The parse precedence (submission → submissions → whole body) and the
// routing-key lifting rules are the contract the public forms rely on;
// these tests pin each branch.

package intake

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestParseBatch_WholeBodyIsOneSubmission(t *testing.T) {
	batch, skipped, err := ParseBatch([]byte(`{"name":"Ada","email":"ada@example.com"}`))
	if err != nil {
		t.Fatalf("ParseBatch error: %v", err)
	}
	if len(batch) != 1 || skipped != 0 {
		t.Fatalf("got %d items, %d skipped; want 1, 0", len(batch), skipped)
	}
	if batch[0]["name"] != "Ada" {
		t.Fatalf("unexpected item: %#v", batch[0])
	}
}

func TestParseBatch_SubmissionWrapper(t *testing.T) {
	batch, _, err := ParseBatch([]byte(`{"type":"mrd_single_submit","submission":{"form_id":"contact"}}`))
	if err != nil {
		t.Fatalf("ParseBatch error: %v", err)
	}
	if len(batch) != 1 || batch[0]["form_id"] != "contact" {
		t.Fatalf("unexpected batch: %#v", batch)
	}
}

func TestParseBatch_SubmissionsList_SkipsNonObjects(t *testing.T) {
	body := `{"submissions":[{"a":1},"junk",{"b":2},42,null]}`
	batch, skipped, err := ParseBatch([]byte(body))
	if err != nil {
		t.Fatalf("ParseBatch error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d items, want 2", len(batch))
	}
	if skipped != 3 {
		t.Fatalf("got %d skipped, want 3", skipped)
	}
}

func TestParseBatch_InvalidJSON(t *testing.T) {
	for _, body := range []string{``, `not json`, `[1,2,3]`, `"str"`} {
		if _, _, err := ParseBatch([]byte(body)); err == nil {
			t.Errorf("body %q: expected error", body)
		}
	}
}

func TestNormalize_DataFieldVerbatim(t *testing.T) {
	raw := map[string]any{
		"form_id": "quiz",
		"data":    map[string]any{"score": float64(7), "timestamp": "inside"},
		"extra":   "ignored",
	}
	rec := Normalize(raw, testNow, "1.2.3.4", "UA")

	want := map[string]any{"score": float64(7), "timestamp": "inside"}
	if !reflect.DeepEqual(rec.Payload, want) {
		t.Fatalf("payload = %#v, want %#v", rec.Payload, want)
	}
	if rec.FormID != "quiz" {
		t.Fatalf("form_id = %q", rec.FormID)
	}
}

func TestNormalize_RoutingKeysLiftedFromPayload(t *testing.T) {
	raw := map[string]any{
		"timestamp":   "2026-01-01T00:00:00Z",
		"page":        "/join",
		"form_id":     "signup",
		"session_id":  "s-1",
		"name":        "Ada",
		"page_rating": float64(5),
	}
	rec := Normalize(raw, testNow, "", "")

	if rec.Timestamp != "2026-01-01T00:00:00Z" {
		t.Fatalf("timestamp = %q", rec.Timestamp)
	}
	if rec.PageSource != "/join" {
		t.Fatalf("page alias not honored: %q", rec.PageSource)
	}
	want := map[string]any{"name": "Ada", "page_rating": float64(5)}
	if !reflect.DeepEqual(rec.Payload, want) {
		t.Fatalf("payload = %#v, want %#v", rec.Payload, want)
	}
}

func TestNormalize_PageSourceWinsOverAlias(t *testing.T) {
	rec := Normalize(map[string]any{"page_source": "/a", "page": "/b"}, testNow, "", "")
	if rec.PageSource != "/a" {
		t.Fatalf("page_source = %q, want /a", rec.PageSource)
	}
}

func TestNormalize_TimestampDefaultsToReceiptTime(t *testing.T) {
	rec := Normalize(map[string]any{}, testNow, "", "")
	if rec.Timestamp != "2026-03-14T09:26:53Z" {
		t.Fatalf("timestamp = %q", rec.Timestamp)
	}
}

func TestPayloadJSON_LeavesSlashesAndUnicode(t *testing.T) {
	rec := Record{Payload: map[string]any{"page": "/a/b", "name": "Zoë"}}
	got, err := rec.PayloadJSON()
	if err != nil {
		t.Fatalf("PayloadJSON: %v", err)
	}
	s := string(got)
	if s != `{"name":"Zoë","page":"/a/b"}` {
		t.Fatalf("unexpected serialization: %s", s)
	}
}

func TestFlatten_RoutingFieldsWin(t *testing.T) {
	rec := Record{
		Timestamp:  "T",
		PageSource: "P",
		FormID:     "F",
		SessionID:  "S",
		ClientIP:   "9.9.9.9",
		UserAgent:  "UA",
		Payload:    map[string]any{"ip": "spoofed", "name": "Ada"},
	}
	flat := rec.Flatten()
	if flat["ip"] != "9.9.9.9" {
		t.Fatalf("routing ip did not win: %v", flat["ip"])
	}
	if flat["name"] != "Ada" {
		t.Fatalf("payload field lost: %#v", flat)
	}

	// Flatten output must round-trip as JSON for the sink.
	if _, err := json.Marshal(flat); err != nil {
		t.Fatalf("flatten not serializable: %v", err)
	}
}
