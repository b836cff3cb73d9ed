package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Document is an uploaded file forwarded to the API
type Document struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// multipartBody accumulates form fields and files
type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipartBody() *multipartBody {
	b := &multipartBody{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

func (b *multipartBody) field(name, value string) error {
	if err := b.writer.WriteField(name, value); err != nil {
		return fmt.Errorf("failed to write field %s: %w", name, err)
	}
	return nil
}

func (b *multipartBody) file(name string, doc *Document) error {
	if doc == nil {
		return nil
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(name), escapeQuotes(doc.Filename)))
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := b.writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", name, err)
	}
	if _, err := io.Copy(part, doc.Content); err != nil {
		return fmt.Errorf("failed to copy %s: %w", name, err)
	}
	return nil
}

// close finishes the body and returns it with its content type
func (b *multipartBody) close() (io.Reader, string, error) {
	if err := b.writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &b.buf, b.writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
