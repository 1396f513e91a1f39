// internal/mail/templates_test.go
//
// Unit-tests for template selection, rendering, and escaping.

package mail

import (
	"strings"
	"testing"
	"time"
)

var renderNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestParseTemplate_LenientFallback(t *testing.T) {
	cases := map[string]Template{
		"welcome":           TemplateWelcome,
		"form_notification": TemplateFormNotification,
		"default":           TemplateDefault,
		"":                  TemplateDefault,
		"unknown_value":     TemplateDefault,
		"WELCOME":           TemplateDefault, // names are case-sensitive
	}
	for in, want := range cases {
		if got := ParseTemplate(in); got != want {
			t.Errorf("ParseTemplate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender_UnknownMatchesDefault(t *testing.T) {
	def, err := Render(TemplateDefault, nil, renderNow)
	if err != nil {
		t.Fatalf("render default: %v", err)
	}
	unk, err := Render(ParseTemplate("unknown_value"), map[string]any{"name": "x"}, renderNow)
	if err != nil {
		t.Fatalf("render unknown: %v", err)
	}
	if def != unk {
		t.Fatal("unknown template must render identically to default")
	}
	if !strings.Contains(def, "Thank you for your interest in MRD AI &amp; Blockchain!") {
		t.Fatal("default greeting missing")
	}
}

func TestRender_WelcomeDefaults(t *testing.T) {
	html, err := Render(TemplateWelcome, nil, renderNow)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Hello Valued Member!") {
		t.Fatal("name default missing")
	}
	if !strings.Contains(html, "Join Date: 2026-03-14") {
		t.Fatal("join date default missing")
	}
}

func TestRender_WelcomeEscapesName(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]any{"name": `<script>alert(1)</script>`}, renderNow)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("unescaped markup in output")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatal("escaped name missing from output")
	}
}

func TestRender_FormNotification(t *testing.T) {
	data := map[string]any{
		"form_type": "Consulting Inquiry",
		"name":      "Ada",
		"email":     "ada@example.com",
		"message":   "line one\nline <two>",
	}
	html, err := Render(TemplateFormNotification, data, renderNow)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "New Consulting Inquiry Submission") {
		t.Fatal("form type missing")
	}
	if !strings.Contains(html, "line one<br>line &lt;two&gt;") {
		t.Fatalf("message not escaped-then-broken: %s", html)
	}
	if !strings.Contains(html, "2026-03-14 09:26:53") {
		t.Fatal("submitted-at stamp missing")
	}
}

func TestRender_FormNotificationDefaults(t *testing.T) {
	html, err := Render(TemplateFormNotification, nil, renderNow)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Contact Form", "Unknown", "No message provided"} {
		if !strings.Contains(html, want) {
			t.Errorf("default %q missing", want)
		}
	}
}
