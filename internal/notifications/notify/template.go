package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Treasury {{.EventLabel}}]
Tenant: {{.Tenant}}
{{ if .Transfer }}Transfer: {{.Transfer}}
{{ end }}Actor: {{.Actor}}
{{ if .Destination }}Destination: {{.Destination}}
{{ end }}{{ if .Amount }}Amount: {{.Amount}}
{{ end }}{{ if .Reason }}Reason: {{.Reason}}
{{ end }}{{ if .RequiredApprovals }}Approvals: {{.Approvals}}/{{.RequiredApprovals}}
{{ end }}{{ if .Emergency }}Emergency: yes
{{ end }}Time: {{.OccurredAt}}
{{ if .Note }}Note: {{.Note}}
{{ end }}`

// TemplateData provides fields for rendering notification content.
type TemplateData struct {
	Event             string
	EventLabel        string
	Tenant            string
	Transfer          string
	Actor             string
	Destination       string
	Amount            string
	Reason            string
	Approvals         int
	RequiredApprovals int
	Emergency         bool
	OccurredAt        string
	Note              string
}

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("transfer-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("notification template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
