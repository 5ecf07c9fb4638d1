package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/landing-sop/contact-api/internal/submission"
)

const sourceURL = "https://ifnoise.github.io/landing-sop/"

// The HTML body mirrors the mail the site has always sent. Every interpolated
// value passes through html/template's contextual escaping, so user-controlled
// text cannot inject markup.
const notificationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2d5016;">Новая заявка с сайта</h2>
  <p><strong>Дата:</strong> {{.SubmittedAt}}</p>
  <hr style="border: 1px solid #e0e0e0;">
  <table style="width: 100%; border-collapse: collapse;">
    <tr>
      <td style="padding: 8px; background: #f5f5f5; width: 150px;"><strong>Имя:</strong></td>
      <td style="padding: 8px;">{{.Name}}</td>
    </tr>
    <tr>
      <td style="padding: 8px; background: #f5f5f5;"><strong>Ферма:</strong></td>
      <td style="padding: 8px;">{{if .Farm}}{{.Farm}}{{else}}-{{end}}</td>
    </tr>
    <tr>
      <td style="padding: 8px; background: #f5f5f5;"><strong>Email:</strong></td>
      <td style="padding: 8px;"><a href="mailto:{{.Email}}">{{.Email}}</a></td>
    </tr>
    <tr>
      <td style="padding: 8px; background: #f5f5f5;"><strong>Телефон:</strong></td>
      <td style="padding: 8px;">{{if .Phone}}{{.Phone}}{{else}}-{{end}}</td>
    </tr>
    <tr>
      <td style="padding: 8px; background: #f5f5f5;"><strong>Тип фермы:</strong></td>
      <td style="padding: 8px;">{{if .FarmType}}{{.FarmType}}{{else}}-{{end}}</td>
    </tr>
    <tr>
      <td style="padding: 8px; background: #f5f5f5;"><strong>Размер:</strong></td>
      <td style="padding: 8px;">{{if .FarmSize}}{{.FarmSize}}{{else}}-{{end}}</td>
    </tr>
  </table>
  <div style="margin-top: 20px; padding: 15px; background: #f9f9f9; border-left: 4px solid #2d5016;">
    <strong>Сообщение:</strong><br>
    {{range .MessageLines}}{{.}}<br>{{end}}
  </div>
  <hr style="border: 1px solid #e0e0e0; margin-top: 20px;">
  <p style="color: #666; font-size: 12px;">
    Это автоматическое уведомление с формы обратной связи<br>
    <a href="{{.SourceURL}}">Landing SOP</a>
  </p>
</div>`

var bodyTemplate = template.Must(template.New("notification").Parse(notificationHTML))

type bodyData struct {
	SubmittedAt  string
	Name         string
	Farm         string
	Email        string
	Phone        string
	FarmType     string
	FarmSize     string
	MessageLines []string
	SourceURL    string
}

func renderBody(record submission.Record) (textBody, htmlBody string, err error) {
	submittedAt := time.Unix(record.SubmittedAtSeconds, 0).UTC().Format("02.01.2006 15:04 UTC")

	data := bodyData{
		SubmittedAt:  submittedAt,
		Name:         record.Name,
		Farm:         record.Farm,
		Email:        record.Email,
		Phone:        record.Phone,
		FarmType:     record.FarmType,
		FarmSize:     record.FarmSize,
		MessageLines: strings.Split(record.Message, "\n"),
		SourceURL:    sourceURL,
	}

	var htmlBuilder strings.Builder
	if err := bodyTemplate.Execute(&htmlBuilder, data); err != nil {
		return "", "", fmt.Errorf("notify: failed to render body: %w", err)
	}

	var textBuilder strings.Builder
	fmt.Fprintf(&textBuilder, "Новая заявка с сайта\n\n")
	fmt.Fprintf(&textBuilder, "Дата: %s\n", submittedAt)
	fmt.Fprintf(&textBuilder, "Имя: %s\n", record.Name)
	fmt.Fprintf(&textBuilder, "Ферма: %s\n", orDash(record.Farm))
	fmt.Fprintf(&textBuilder, "Email: %s\n", record.Email)
	fmt.Fprintf(&textBuilder, "Телефон: %s\n", orDash(record.Phone))
	fmt.Fprintf(&textBuilder, "Тип фермы: %s\n", orDash(record.FarmType))
	fmt.Fprintf(&textBuilder, "Размер: %s\n", orDash(record.FarmSize))
	fmt.Fprintf(&textBuilder, "\nСообщение:\n%s\n", record.Message)

	return textBuilder.String(), htmlBuilder.String(), nil
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
