package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"lawoffice/internal/domain/inquiry"
)

// ErrNoRecipient is returned when a request has no To address.
var ErrNoRecipient = errors.New("email has no recipient")

var inquiryTmpl = template.Must(template.New("inquiry").Parse(`<h2>Nueva consulta desde el sitio web</h2>
<p><strong>Nombre:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Teléfono:</strong> {{.Phone}}</p>{{end}}
<p><strong>Tipo de consulta:</strong> {{.ConsultationType}}</p>
<p><strong>Contacto preferido:</strong> {{.PreferredContact}}</p>
<p><strong>Asunto:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>`))

// InquiryNotification builds the office notification for a new inquiry.
// Replies go straight to the visitor.
// PRE: office is the office mailbox
// POST: returns a request with the inquiry rendered as escaped HTML
func InquiryNotification(inq inquiry.Inquiry, office string) (SendRequest, error) {
	if office == "" {
		return SendRequest{}, ErrNoRecipient
	}
	var buf bytes.Buffer
	if err := inquiryTmpl.Execute(&buf, inq); err != nil {
		return SendRequest{}, fmt.Errorf("render inquiry email: %w", err)
	}
	return SendRequest{
		To:      []string{office},
		Subject: fmt.Sprintf("Nueva consulta: %s", inq.Subject),
		HTML:    buf.String(),
		ReplyTo: inq.Email,
	}, nil
}
