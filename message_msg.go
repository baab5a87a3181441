package doc2pdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/richardlehane/mscfb"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Outlook .msg files are compound files whose streams hold MAPI
// properties. A stream named __substg1.0_IIIITTTT carries property id
// IIII with type TTTT.
const (
	msgPropPrefix   = "__substg1.0_"
	msgAttachPrefix = "__attach_version1.0_"
	msgPropsStream  = "__properties_version1.0"
)

// MAPI property types.
const (
	ptString8 = 0x001E
	ptUnicode = 0x001F
	ptBinary  = 0x0102
	ptSysTime = 0x0040
)

// MAPI property ids.
const (
	propSubject         = 0x0037
	propClientSubmit    = 0x0039
	propSenderName      = 0x0C1A
	propSenderEmail     = 0x0C1F
	propSenderSMTP      = 0x5D01
	propDisplayCc       = 0x0E03
	propDisplayTo       = 0x0E04
	propDeliveryTime    = 0x0E06
	propBody            = 0x1000
	propHTML            = 0x1013
	propHeaders         = 0x007D
	propAttachData      = 0x3701
	propAttachFilename  = 0x3704
	propAttachLongName  = 0x3707
	propAttachMIME      = 0x370E
	propAttachContentID = 0x3712
	propDisplayName     = 0x3001
)

// Seconds between 1601-01-01 and the Unix epoch.
const fileTimeEpochOffset = 11644473600

// msgProps holds the properties of one storage by id.
type msgProps map[uint16]msgValue

type msgValue struct {
	typ  uint16
	data []byte
}

func (p msgProps) str(id uint16) string {
	v, ok := p[id]
	if !ok {
		return ""
	}
	return strings.TrimRight(decodeMAPIString(v.typ, v.data), "\x00")
}

func (p msgProps) first(ids ...uint16) string {
	for _, id := range ids {
		if s := strings.TrimSpace(p.str(id)); s != "" {
			return s
		}
	}
	return ""
}

// parseMSG reads subject, addresses, bodies and attachments of an
// Outlook message. Embedded message attachments are not descended into.
func parseMSG(path string) (*mailMessage, error) {
	f, err := os.Open(path) // #nosec G304 -- file being converted
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("reading compound file: %w", err)
	}

	root := msgProps{}
	var rootTimes []byte
	attachments := map[string]msgProps{}
	var order []string

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		var props msgProps
		switch {
		case len(entry.Path) == 0:
			props = root
		case len(entry.Path) == 1 && strings.HasPrefix(entry.Path[0], msgAttachPrefix):
			key := entry.Path[0]
			if attachments[key] == nil {
				attachments[key] = msgProps{}
				order = append(order, key)
			}
			props = attachments[key]
		default:
			continue
		}

		if len(entry.Path) == 0 && entry.Name == msgPropsStream {
			if rootTimes, err = io.ReadAll(entry); err != nil {
				return nil, err
			}
			continue
		}
		id, typ, ok := parsePropStream(entry.Name)
		if !ok {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, err
		}
		props[id] = msgValue{typ: typ, data: data}
	}

	msg := &mailMessage{
		Subject:  root.first(propSubject),
		To:       root.first(propDisplayTo),
		Cc:       root.first(propDisplayCc),
		TextBody: root.str(propBody),
	}
	msg.From = formatSender(root.first(propSenderName), root.first(propSenderSMTP, propSenderEmail))
	if v, ok := root[propHTML]; ok {
		if v.typ == ptBinary {
			msg.HTMLBody = decodeHTML(v.data)
		} else {
			msg.HTMLBody = root.str(propHTML)
		}
	}
	msg.Date = messageDate(root.str(propHeaders), rootTimes)

	for _, key := range order {
		p := attachments[key]
		data, ok := p[propAttachData]
		if !ok || data.typ != ptBinary {
			continue
		}
		msg.Attachments = append(msg.Attachments, mailAttachment{
			Name:      p.first(propAttachLongName, propAttachFilename, propDisplayName),
			MIMEType:  p.first(propAttachMIME),
			ContentID: strings.Trim(p.first(propAttachContentID), "<>"),
			Data:      data.data,
		})
	}
	return msg, nil
}

// parsePropStream splits "__substg1.0_0037001F" into id and type.
func parsePropStream(name string) (id, typ uint16, ok bool) {
	hex, found := strings.CutPrefix(name, msgPropPrefix)
	if !found || len(hex) < 8 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(hex[:8], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint16(v >> 16), uint16(v), true
}

func decodeMAPIString(typ uint16, data []byte) string {
	switch typ {
	case ptUnicode:
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		if err == nil {
			return string(out)
		}
	case ptString8:
		if utf8.Valid(data) {
			return string(data)
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err == nil {
			return string(out)
		}
	}
	return string(data)
}

// decodeHTML converts an HTML body to UTF-8 using its meta charset,
// guessing when none is declared.
func decodeHTML(data []byte) string {
	enc, _, _ := charset.DetermineEncoding(data, "text/html")
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(bytes.TrimRight(out, "\x00"))
}

func formatSender(name, addr string) string {
	switch {
	case name == "":
		return addr
	case addr == "" || strings.EqualFold(name, addr):
		return name
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}

// messageDate prefers the Date transport header and falls back to the
// submit or delivery time of the properties stream.
func messageDate(headers string, props []byte) string {
	if headers != "" {
		if m, err := mail.ReadMessage(strings.NewReader(headers + "\r\n\r\n")); err == nil {
			if t, err := m.Header.Date(); err == nil {
				return t.Format(time.RFC1123Z)
			}
		}
	}
	if t, ok := propsTime(props, propClientSubmit, propDeliveryTime); ok {
		return t.UTC().Format(time.RFC1123Z)
	}
	return ""
}

// propsTime scans the fixed-size entries of a top-level properties
// stream: a 32 byte header then 16 byte records of tag, flags and value.
func propsTime(props []byte, ids ...uint16) (time.Time, bool) {
	const header, record = 32, 16
	if len(props) < header {
		return time.Time{}, false
	}
	found := map[uint16]uint64{}
	for off := header; off+record <= len(props); off += record {
		tag := binary.LittleEndian.Uint32(props[off:])
		if uint16(tag) != ptSysTime {
			continue
		}
		found[uint16(tag>>16)] = binary.LittleEndian.Uint64(props[off+8:])
	}
	for _, id := range ids {
		ft, ok := found[id]
		if !ok || ft == 0 {
			continue
		}
		secs := int64(ft/10_000_000) - fileTimeEpochOffset
		nanos := int64(ft%10_000_000) * 100
		return time.Unix(secs, nanos), true
	}
	return time.Time{}, false
}
