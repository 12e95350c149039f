package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template имя шаблона письма
type Template string

const (
	TemplateApprovalRequest Template = "approval_request"
	TemplateStatusChanged   Template = "status_changed"
	TemplateCancelled       Template = "order_cancelled"
	TemplateAutoDeclined    Template = "auto_declined"
	TemplateReminder        Template = "reminder"
)

// Data переменные шаблона
type Data struct {
	RecipientName    string
	CounterpartyName string
	OrderID          int64
	ServiceName      string
	Start            string
	Status           string
	Reason           string
	ApproveURL       string
	DeclineURL       string
	DetailURL        string
}

// Message готовое письмо
type Message struct {
	To       string
	Subject  string
	Body     string
	Template Template
}

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[Template]mailTemplate{
	TemplateApprovalRequest: parse(TemplateApprovalRequest,
		`New appointment request #{{.OrderID}}`,
		`Hello{{if .RecipientName}}, {{.RecipientName}}{{end}}!

{{if .CounterpartyName}}{{.CounterpartyName}}{{else}}A customer{{end}} booked {{if .ServiceName}}"{{.ServiceName}}"{{else}}an appointment{{end}} at {{.Start}}.

Approve: {{.ApproveURL}}
Decline: {{.DeclineURL}}

The request is declined automatically if you do not answer in time.
`),
	TemplateStatusChanged: parse(TemplateStatusChanged,
		`Appointment #{{.OrderID}} {{.Status}}`,
		`Hello{{if .RecipientName}}, {{.RecipientName}}{{end}}!

Your appointment at {{.Start}} was {{.Status}} by the specialist.
{{if .DetailURL}}
Details: {{.DetailURL}}
{{end}}`),
	TemplateCancelled: parse(TemplateCancelled,
		`Appointment #{{.OrderID}} cancelled`,
		`Hello{{if .RecipientName}}, {{.RecipientName}}{{end}}!

{{if .CounterpartyName}}{{.CounterpartyName}}{{else}}The other party{{end}} cancelled the appointment at {{.Start}}.
Reason: {{.Reason}}
`),
	TemplateAutoDeclined: parse(TemplateAutoDeclined,
		`Appointment #{{.OrderID}} declined`,
		`Hello{{if .RecipientName}}, {{.RecipientName}}{{end}}!

The appointment at {{.Start}} was declined because the specialist did not respond in time.
`),
	TemplateReminder: parse(TemplateReminder,
		`Reminder: appointment #{{.OrderID}} at {{.Start}}`,
		`Hello{{if .RecipientName}}, {{.RecipientName}}{{end}}!

This is a reminder about your appointment{{if .ServiceName}} "{{.ServiceName}}"{{end}} at {{.Start}}.
{{if .DetailURL}}
Details: {{.DetailURL}}
{{end}}`),
}

func parse(name Template, subject, body string) mailTemplate {
	return mailTemplate{
		subject: template.Must(template.New(string(name) + ".subject").Parse(subject)),
		body:    template.Must(template.New(string(name) + ".body").Parse(body)),
	}
}

// Render рендерит тему и тело письма
func Render(name Template, data Data) (subject, body string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	var sb, bb bytes.Buffer
	if err := tpl.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("%w: %s subject: %v", ErrRender, name, err)
	}
	if err := tpl.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("%w: %s body: %v", ErrRender, name, err)
	}
	return sb.String(), bb.String(), nil
}
