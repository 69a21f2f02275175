package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"NatureDaily/internal/domain"
)

// message is a multipart/mixed email: a text (and optional HTML) body plus attachments.
// Bcc never appears in the headers; it only extends the envelope.
type message struct {
	From        string
	To          []string
	Subject     string
	Date        time.Time
	Text        string
	HTML        string
	Attachments []domain.ReportFile
}

// Bytes renders the message with CRLF line endings.
func (m message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("From", m.From)
	header.Set("To", strings.Join(m.To, ", "))
	header.Set("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header.Set("Date", m.Date.Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")
	header.Set("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())

	var head bytes.Buffer
	for _, key := range []string{"From", "To", "Subject", "Date", "MIME-Version", "Content-Type"} {
		fmt.Fprintf(&head, "%s: %s\r\n", key, header.Get(key))
	}
	head.WriteString("\r\n")

	if err := m.writeBody(mixed); err != nil {
		return nil, err
	}
	for _, att := range m.Attachments {
		if err := writeAttachment(mixed, att); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	return append(head.Bytes(), buf.Bytes()...), nil
}

func (m message) writeBody(mixed *multipart.Writer) error {
	if m.HTML == "" {
		return writeTextPart(mixed, "text/plain; charset=utf-8", m.Text)
	}

	var altBuf bytes.Buffer
	alt := multipart.NewWriter(&altBuf)
	if err := writeTextPart(alt, "text/plain; charset=utf-8", m.Text); err != nil {
		return err
	}
	if err := writeTextPart(alt, "text/html; charset=utf-8", m.HTML); err != nil {
		return err
	}
	if err := alt.Close(); err != nil {
		return err
	}

	part, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + alt.Boundary()},
	})
	if err != nil {
		return err
	}
	_, err = part.Write(altBuf.Bytes())
	return err
}

func writeTextPart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(w *multipart.Writer, f domain.ReportFile) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType(mediaType(contentType), map[string]string{"name": f.Filename})},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename})},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(f.Payload)
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = part.Write([]byte(encoded + "\r\n"))
	return err
}

func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return "application/octet-stream"
}
