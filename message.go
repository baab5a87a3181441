package doc2pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/assets"
	"github.com/alnah/go-doc2pdf/internal/layout"
	"github.com/alnah/go-doc2pdf/internal/pipeline"
)

// messageBodyName is the body PDF inside a message folder.
const messageBodyName = "_message.pdf"

// mailMessage is a parsed .msg or .eml file.
type mailMessage struct {
	Subject     string
	From        string
	To          string
	Cc          string
	Date        string
	TextBody    string
	HTMLBody    string
	Attachments []mailAttachment
}

type mailAttachment struct {
	Name      string
	MIMEType  string
	ContentID string
	Data      []byte
}

// fields returns the header block shown above the body.
func (m *mailMessage) fields() []pipeline.Field {
	return []pipeline.Field{
		{Label: "From", Value: m.From},
		{Label: "To", Value: m.To},
		{Label: "Cc", Value: m.Cc},
		{Label: "Date", Value: m.Date},
	}
}

// htmlRenderer prints a finished HTML page to a PDF.
type htmlRenderer interface {
	Available() bool
	RenderHTML(ctx context.Context, page, dest string) error
}

// messageBackend converts mail messages. A message without attachments
// becomes one PDF. Otherwise a "<file>-open" folder receives the body as
// _message.pdf next to the attachments, which are converted in turn.
type messageBackend struct {
	cfg     *engineConfig
	members func() Chain
	html    htmlRenderer
}

var _ Backend = (*messageBackend)(nil)

func newMessageBackend(cfg *engineConfig, members func() Chain, html htmlRenderer) *messageBackend {
	return &messageBackend{cfg: cfg, members: members, html: html}
}

func (m *messageBackend) Name() string         { return "message" }
func (m *messageBackend) Family() Family       { return FamilyContainer }
func (m *messageBackend) Extensions() []string { return messageExtensions }
func (m *messageBackend) Available() bool      { return true }

// OutputDir returns the folder a message with attachments expands into.
func (m *messageBackend) OutputDir(source, dest string) string {
	return filepath.Join(filepath.Dir(dest), filepath.Base(source)+"-open")
}

func (m *messageBackend) Convert(ctx context.Context, source, dest string) Outcome {
	start := time.Now()
	msg, err := m.parse(source)
	if err != nil {
		return finish(m.Name(), source, dest, start, err)
	}

	var kept []mailAttachment
	dropped := 0
	for i, a := range msg.Attachments {
		if a.Name == "" {
			a.Name = fmt.Sprintf("attachment_%d%s", i+1, extensionForType(a.MIMEType))
		}
		if isImageName(a.Name) {
			if keep, reason := significantImage(a.Name, a.Data); !keep {
				m.cfg.logger.Debug("attachment dropped",
					zap.String("message", source),
					zap.String("attachment", a.Name),
					zap.String("reason", reason))
				dropped++
				continue
			}
		}
		kept = append(kept, a)
	}

	if len(kept) == 0 {
		return finish(m.Name(), source, dest, start, m.renderBody(ctx, msg, dest, nil))
	}

	out := m.OutputDir(source, dest)
	switch {
	case isDir(out) && !m.cfg.force:
		return Skipped(StatusSkippedExists, source, m.Name(), "output directory exists")
	case exists(out) && !isDir(out):
		out = freePath(out)
	}
	if err := os.MkdirAll(out, 0o750); err != nil {
		return finish(m.Name(), source, dest, start, err)
	}

	exp := newExpansion(m.cfg, m.members(), m, out, messageConvertible)
	exp.counts.dropped = dropped
	body := filepath.Join(out, exp.names.unique(out, messageBodyName, exp.onDisk(out)))
	names := make([]string, 0, len(kept))
	for _, a := range kept {
		names = append(names, a.Name)
		if err := exp.add(ctx, "", a.Name, bytes.NewReader(a.Data)); err != nil {
			exp.counts.failed++
			m.cfg.logger.Warn("could not write attachment",
				zap.String("message", source),
				zap.String("attachment", a.Name),
				zap.Error(err))
		}
	}

	if err := m.renderBody(ctx, msg, body, names); err != nil {
		if rmErr := os.RemoveAll(out); rmErr != nil {
			m.cfg.logger.Warn("could not remove message folder", zap.String("path", out), zap.Error(rmErr))
		}
		return finish(m.Name(), source, dest, start, err)
	}
	return Succeeded(source, out, m.Name(), time.Since(start), exp.counts.String())
}

func (m *messageBackend) parse(source string) (*mailMessage, error) {
	if Extension(source) == ".msg" {
		return parseMSG(source)
	}
	return parseEML(source)
}

// renderBody writes the message header and body to dest. An HTML body
// goes through the browser when one is available; anything else, and
// any browser failure, is laid out as text.
func (m *messageBackend) renderBody(ctx context.Context, msg *mailMessage, dest string, attachments []string) error {
	if strings.TrimSpace(msg.HTMLBody) != "" && m.html != nil && m.html.Available() {
		err := m.renderHTMLBody(ctx, msg, dest, attachments)
		if err == nil {
			return nil
		}
		m.cfg.logger.Debug("html body render failed, using text", zap.String("dest", dest), zap.Error(err))
	}

	text := msg.TextBody
	if strings.TrimSpace(text) == "" && msg.HTMLBody != "" {
		text = pipeline.HTMLToText(msg.HTMLBody)
	}
	title := msg.Subject
	if title == "" {
		title = "(no subject)"
	}

	doc := layout.New(layout.Options{Title: title})
	doc.Heading(title)
	var fields []layout.Field
	for _, f := range msg.fields() {
		fields = append(fields, layout.Field{Label: f.Label, Value: f.Value})
	}
	doc.Fields(fields)
	doc.Rule()
	doc.Paragraph(text)
	if len(attachments) > 0 {
		doc.Rule()
		doc.Paragraph("Attachments: " + strings.Join(attachments, ", "))
	}
	return doc.Save(dest)
}

func (m *messageBackend) renderHTMLBody(ctx context.Context, msg *mailMessage, dest string, attachments []string) error {
	body := msg.HTMLBody
	if inline := inlineParts(msg); len(inline) > 0 {
		dir, err := os.MkdirTemp("", "doc2pdf-cid-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		files := map[string]string{}
		for i, a := range inline {
			path := filepath.Join(dir, fmt.Sprintf("%d%s", i, Extension(a.Name)))
			if err := os.WriteFile(path, a.Data, 0o600); err != nil {
				return err
			}
			files[a.ContentID] = path
		}
		if body, err = pipeline.RewriteContentIDs(body, files); err != nil {
			return err
		}
	}

	css, err := assets.LoadStyle("message")
	if err != nil {
		return err
	}
	page, err := pipeline.RenderMessage(ctx, pipeline.MessageView{
		Subject:     msg.Subject,
		Fields:      msg.fields(),
		HTMLBody:    template.HTML(body), // #nosec G203 -- sanitized by RenderMessage
		Attachments: attachments,
	}, css)
	if err != nil {
		return err
	}
	return m.html.RenderHTML(ctx, page, dest)
}

// inlineParts returns the attachments an HTML body can reference by cid.
func inlineParts(msg *mailMessage) []mailAttachment {
	var out []mailAttachment
	for _, a := range msg.Attachments {
		if a.ContentID != "" && strings.Contains(msg.HTMLBody, a.ContentID) {
			out = append(out, a)
		}
	}
	return out
}

var knownTypes = []struct{ mime, ext string }{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
	{"image/bmp", ".bmp"},
	{"image/tiff", ".tif"},
	{"image/webp", ".webp"},
	{"application/pdf", ".pdf"},
	{"application/msword", ".doc"},
	{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	{"application/vnd.ms-excel", ".xls"},
	{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
	{"application/vnd.ms-powerpoint", ".ppt"},
	{"application/vnd.openxmlformats-officedocument.presentationml.presentation", ".pptx"},
	{"text/plain", ".txt"},
	{"text/html", ".html"},
	{"text/xml", ".xml"},
	{"application/zip", ".zip"},
	{"application/x-rar-compressed", ".rar"},
	{"application/x-7z-compressed", ".7z"},
	{"message/rfc822", ".eml"},
}

// extensionForType picks a file extension for an unnamed attachment.
func extensionForType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	for _, t := range knownTypes {
		if t.mime == mt {
			return t.ext
		}
	}
	return ""
}
