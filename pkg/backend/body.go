package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// Body is an outbound request payload.
type Body interface {
	open() (io.ReadCloser, string, error)
	isMultipart() bool
}

type jsonBody struct {
	value interface{}
}

// JSON encodes v as an application/json body.
func JSON(v interface{}) Body {
	return jsonBody{value: v}
}

func (b jsonBody) open() (io.ReadCloser, string, error) {
	raw, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", err
	}
	return io.NopCloser(bytes.NewReader(raw)), "application/json", nil
}

func (jsonBody) isMultipart() bool { return false }

// Field is a plain multipart form value.
type Field struct {
	Name  string
	Value string
}

// File is a multipart file part streamed from Content.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Multipart is a file payload. It is streamed through a pipe so large uploads are never
// buffered in memory, and its content type (with boundary) is always generated here.
type Multipart struct {
	Fields []Field
	Files  []File
}

func (m Multipart) open() (io.ReadCloser, string, error) {
	for _, f := range m.Files {
		if f.Content == nil {
			return nil, "", fmt.Errorf("multipart file %q has no content", f.Field)
		}
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(m.write(mw))
	}()
	return pr, mw.FormDataContentType(), nil
}

func (m Multipart) write(mw *multipart.Writer) error {
	for _, field := range m.Fields {
		if err := mw.WriteField(field.Name, field.Value); err != nil {
			return fmt.Errorf("write field %s: %w", field.Name, err)
		}
	}
	for _, file := range m.Files {
		part, err := mw.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return fmt.Errorf("create file part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copy file part %s: %w", file.Field, err)
		}
	}
	return mw.Close()
}

func (Multipart) isMultipart() bool { return true }
