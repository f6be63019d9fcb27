package services

import (
	"html/template"
	"strings"

	"github.com/adampresley/adamgokit/email"
	"github.com/brightsteps/brightstepsngo/pkg/models"
)

/*
SendSyncFailureEmail notifies the gallery admin that a sync run failed. The
admin address and API key come from configuration; when either is blank the
caller skips the notification entirely.
*/
func SendSyncFailureEmail(apiKey, toEmail, fromEmail string, entry *models.SyncLog) error {
	parsedTemplate := strings.Builder{}

	service := email.NewResendService(&email.Config{
		ApiKey: apiKey,
	})

	tmpl := `
<h1>Gallery sync failed</h1>
<p>The gallery sync run started at {{.startedAt}} did not finish
successfully.</p>
<p><strong>Error:</strong> {{.errorMessage}}</p>
<p>Counts so far: {{.found}} found, {{.added}} added, {{.updated}} updated,
{{.unchanged}} unchanged. You can re-run the sync from the admin gallery
page.</p>
	`

	data := map[string]any{
		"startedAt":    entry.StartedAt.Format("Jan 2, 2006 15:04 MST"),
		"errorMessage": entry.ErrorMessage,
		"found":        entry.AlbumsFound,
		"added":        entry.AlbumsAdded,
		"updated":      entry.AlbumsUpdated,
		"unchanged":    entry.AlbumsUnchanged,
	}

	t := template.Must(template.New("email").Parse(tmpl))
	_ = t.Execute(&parsedTemplate, data)

	return service.Send(email.Mail{
		Body:       parsedTemplate.String(),
		BodyIsHtml: true,
		From: email.EmailAddress{
			Email: fromEmail,
			Name:  "Bright Steps Website",
		},
		Subject: "Gallery sync failed",
		To: []email.EmailAddress{
			{Name: "Gallery Admin", Email: toEmail},
		},
	})
}
