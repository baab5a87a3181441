package pipeline

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/alnah/go-doc2pdf/internal/assets"
)

// Field is one labelled header line of a message.
type Field struct {
	Label string
	Value string
}

// MessageView is the data the message template renders.
type MessageView struct {
	Subject     string
	Fields      []Field
	HTMLBody    template.HTML
	TextBody    string
	Attachments []string
}

var (
	messageOnce sync.Once
	messageTmpl *template.Template
	messageErr  error
)

func messageTemplate() (*template.Template, error) {
	messageOnce.Do(func() {
		src, err := assets.LoadTemplate("message")
		if err != nil {
			messageErr = err
			return
		}
		messageTmpl, messageErr = template.New("message").Parse(src)
	})
	return messageTmpl, messageErr
}

// RenderMessage renders v as a standalone HTML page styled with css.
// An HTML body is sanitized first; a body that fails to parse falls
// back to its text rendering.
func RenderMessage(ctx context.Context, v MessageView, css string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmpl, err := messageTemplate()
	if err != nil {
		return "", fmt.Errorf("loading message template: %w", err)
	}

	if v.HTMLBody != "" {
		body, err := SanitizeMailHTML(string(v.HTMLBody))
		if err != nil {
			v.TextBody = HTMLToText(string(v.HTMLBody))
			v.HTMLBody = ""
		} else {
			v.HTMLBody = template.HTML(body) // #nosec G203 -- sanitized above
		}
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	injector := &CSSInjection{}
	return injector.InjectCSS(ctx, buf.String(), css), nil
}
