package doc2pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// maxMIMEDepth bounds multipart nesting.
const maxMIMEDepth = 16

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.NewReaderLabel}

type headerGetter interface {
	Get(key string) string
}

// parseEML reads an RFC 5322 message. The first text/plain and text/html
// parts that are not attachments become the bodies; every other leaf
// part is an attachment. Attached messages are kept whole as .eml files.
func parseEML(path string) (*mailMessage, error) {
	f, err := os.Open(path) // #nosec G304 -- file being converted
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mail.ReadMessage(f)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	msg := &mailMessage{
		Subject: decodeHeader(m.Header.Get("Subject")),
		From:    decodeHeader(m.Header.Get("From")),
		To:      decodeHeader(m.Header.Get("To")),
		Cc:      decodeHeader(m.Header.Get("Cc")),
		Date:    m.Header.Get("Date"),
	}
	if t, err := m.Header.Date(); err == nil {
		msg.Date = t.Format(time.RFC1123Z)
	}
	if err := walkPart(msg, m.Header, m.Body, 0); err != nil {
		return nil, err
	}
	return msg, nil
}

func walkPart(msg *mailMessage, h headerGetter, body io.Reader, depth int) error {
	if depth > maxMIMEDepth {
		return fmt.Errorf("MIME nesting deeper than %d", maxMIMEDepth)
	}
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading MIME part: %w", err)
			}
			if err := walkPart(msg, part.Header, part, depth+1); err != nil {
				return err
			}
		}
	}

	data, err := io.ReadAll(transferDecoder(h.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return fmt.Errorf("decoding MIME part: %w", err)
	}

	disposition, dparams, _ := mime.ParseMediaType(h.Get("Content-Disposition"))
	name := decodeHeader(dparams["filename"])
	if name == "" {
		name = decodeHeader(params["name"])
	}
	isBody := disposition != "attachment" && name == ""

	switch {
	case isBody && mediaType == "text/plain" && msg.TextBody == "":
		msg.TextBody = decodeCharset(data, params["charset"])
	case isBody && mediaType == "text/html" && msg.HTMLBody == "":
		if params["charset"] == "" {
			msg.HTMLBody = decodeHTML(data)
		} else {
			msg.HTMLBody = decodeCharset(data, params["charset"])
		}
	case len(data) > 0:
		if name == "" && mediaType == "message/rfc822" {
			name = "attached_message.eml"
		}
		msg.Attachments = append(msg.Attachments, mailAttachment{
			Name:      name,
			MIMEType:  mediaType,
			ContentID: strings.Trim(h.Get("Content-ID"), " <>"),
			Data:      data,
		})
	}
	return nil
}

// transferDecoder undoes a Content-Transfer-Encoding. multipart.Reader
// already strips quoted-printable from parts it hands out.
func transferDecoder(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	}
	return r
}

func decodeHeader(s string) string {
	if out, err := wordDecoder.DecodeHeader(s); err == nil {
		return strings.TrimSpace(out)
	}
	return strings.TrimSpace(s)
}

// decodeCharset converts data from the named charset to UTF-8. Unknown
// labels keep valid UTF-8 and read anything else as Windows-1252.
func decodeCharset(data []byte, label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "us-ascii" {
		if utf8.Valid(data) {
			return string(data)
		}
		label = "windows-1252"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}
