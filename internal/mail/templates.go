// internal/mail/templates.go
//
// HTML email templates.
//
/*
Context
--------
Three templates cover every notification the site sends:

  • welcome            – greets a new member by name with their join date.
  • form_notification  – alerts the operator to a form submission.
  • default            – static acknowledgement, ignores data.

Unrecognized template names fall through to default rather than
erroring; the front-end ships template names, and a typo there should
degrade, not break, the send.

Escaping
--------
html/template escapes every interpolated value contextually.  The one
exception is the notification message body, which is escaped manually
and then has newlines converted to <br> so multi-line messages keep
their shape; the pre-escaped result is injected as template.HTML.
*/
package mail

import (
	"html/template"
	"strings"
	"time"
)

// Template selects one of the fixed bodies.
type Template string

const (
	TemplateWelcome          Template = "welcome"
	TemplateFormNotification Template = "form_notification"
	TemplateDefault          Template = "default"
)

// ParseTemplate maps a caller-supplied name to a Template, falling back
// to default for anything unrecognized.
func ParseTemplate(name string) Template {
	switch Template(name) {
	case TemplateWelcome, TemplateFormNotification:
		return Template(name)
	default:
		return TemplateDefault
	}
}

const welcomeHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: linear-gradient(45deg, #FFD700, #FFA500); color: #000; padding: 20px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
.button { display: inline-block; background: #FFD700; color: #000; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold; margin: 20px 0; }
.footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>&#127881; Welcome to MRD AI &amp; Blockchain!</h1></div>
<div class="content">
<h2>Hello {{.Name}}!</h2>
<p>Welcome to the MRD AI &amp; Blockchain community! We're thrilled to have you join us on this exciting journey of innovation and automation.</p>
<h3>What's Next?</h3>
<ul>
<li>&#128218; Explore our comprehensive AI courses</li>
<li>&#129302; Learn automation techniques</li>
<li>&#128188; Connect with like-minded professionals</li>
<li>&#128640; Build your AI-powered future</li>
</ul>
<p>Join Date: {{.JoinDate}}</p>
<a href="#" class="button">Get Started Now</a>
<p>If you have any questions, feel free to reach out to us at <strong>info@mphod.com</strong></p>
<p>Best regards,<br>The MRD Team</p>
</div>
<div class="footer">
<p>MRD AI &amp; Blockchain Consulting | info@mphod.com</p>
<p>This email was sent because you joined our community.</p>
</div>
</div>
</body>
</html>
`

const formNotificationHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #FFD700; color: #000; padding: 20px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
.field { margin: 15px 0; }
.label { font-weight: bold; color: #FFD700; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>&#128231; New {{.FormType}} Submission</h1></div>
<div class="content">
<div class="field"><span class="label">Name:</span> {{.Name}}</div>
<div class="field"><span class="label">Email:</span> {{.Email}}</div>
<div class="field"><span class="label">Message:</span><br>
{{.Message}}</div>
<div class="field"><span class="label">Submitted:</span> {{.SubmittedAt}}</div>
</div>
</div>
</body>
</html>
`

const defaultHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #FFD700; color: #000; padding: 20px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>MRD AI &amp; Blockchain</h1></div>
<div class="content">
<p>Thank you for your interest in MRD AI &amp; Blockchain!</p>
<p>We'll get back to you soon.</p>
<p>Best regards,<br>The MRD Team</p>
</div>
</div>
</body>
</html>
`

var templates = map[Template]*template.Template{
	TemplateWelcome:          template.Must(template.New(string(TemplateWelcome)).Parse(welcomeHTML)),
	TemplateFormNotification: template.Must(template.New(string(TemplateFormNotification)).Parse(formNotificationHTML)),
	TemplateDefault:          template.Must(template.New(string(TemplateDefault)).Parse(defaultHTML)),
}

// Render produces the HTML body for t from caller-supplied data.  now
// feeds the date defaults so tests can pin time.
func Render(t Template, data map[string]any, now time.Time) (string, error) {
	var ctx any
	switch t {
	case TemplateWelcome:
		ctx = struct {
			Name     string
			JoinDate string
		}{
			Name:     stringOr(data, "name", "Valued Member"),
			JoinDate: stringOr(data, "joinDate", now.Format("2006-01-02")),
		}
	case TemplateFormNotification:
		ctx = struct {
			FormType    string
			Name        string
			Email       string
			Message     template.HTML
			SubmittedAt string
		}{
			FormType:    stringOr(data, "form_type", "Contact Form"),
			Name:        stringOr(data, "name", "Unknown"),
			Email:       stringOr(data, "email", "Unknown"),
			Message:     nl2br(stringOr(data, "message", "No message provided")),
			SubmittedAt: now.Format("2006-01-02 15:04:05"),
		}
	default:
		t = TemplateDefault
		ctx = struct{}{}
	}

	var sb strings.Builder
	if err := templates[t].Execute(&sb, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// nl2br escapes s for HTML and converts line breaks to <br> tags.  The
// result is safe by construction, hence template.HTML.
func nl2br(s string) template.HTML {
	esc := template.HTMLEscapeString(s)
	esc = strings.ReplaceAll(esc, "\r\n", "<br>")
	esc = strings.ReplaceAll(esc, "\n", "<br>")
	return template.HTML(esc)
}

// stringOr returns data[key] when it is a non-empty string, else def.
func stringOr(data map[string]any, key, def string) string {
	if s, ok := data[key].(string); ok && s != "" {
		return s
	}
	return def
}
