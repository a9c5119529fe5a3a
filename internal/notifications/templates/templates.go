package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"marketplace/pkg/mailer"
	"marketplace/pkg/model"
)

//go:embed files/*.tmpl
var files embed.FS

var ErrUnknownKind = errors.New("unknown notification kind")

// Renderer turns an EmailNotification into a ready-to-send Email. Each kind
// defines "<kind>.subject", "<kind>.text" and "<kind>.html".
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.New("text").Option("missingkey=zero").ParseFS(files, "files/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	html, err := htmltemplate.New("html").Option("missingkey=zero").ParseFS(files, "files/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

func (r *Renderer) Render(n model.EmailNotification) (mailer.Email, error) {
	if r.text.Lookup(n.Kind+".subject") == nil || r.html.Lookup(n.Kind+".html") == nil {
		return mailer.Email{}, fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}

	subject, err := r.executeText(n.Kind+".subject", n)
	if err != nil {
		return mailer.Email{}, err
	}
	text, err := r.executeText(n.Kind+".text", n)
	if err != nil {
		return mailer.Email{}, err
	}

	var html bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, n.Kind+".html", n); err != nil {
		return mailer.Email{}, fmt.Errorf("failed to render %s html: %w", n.Kind, err)
	}

	return mailer.Email{
		To:      n.To,
		Subject: strings.TrimSpace(subject),
		Text:    strings.TrimSpace(text) + "\n",
		HTML:    html.String(),
	}, nil
}

func (r *Renderer) executeText(name string, n model.EmailNotification) (string, error) {
	var buf bytes.Buffer
	if err := r.text.ExecuteTemplate(&buf, name, n); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
