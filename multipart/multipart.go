// Package multipart builds multipart/form-data request bodies for browser-style
// POST uploads to object storage.
//
// Fields keep their insertion order, except that file fields are always
// emitted after every text field: storage backends that read the body as a
// stream stop parsing form fields once the file part begins.
package multipart

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/input-output-hk/forge-upload/errors"
)

// ContentTypePrefix is the Content-Type header value up to the boundary.
const ContentTypePrefix = "multipart/form-data; boundary="

const (
	boundarySeparator = "-forge-upload-boundary-"
	boundaryAttempts  = 8
	crlf              = "\r\n"
)

var (
	// ErrEmptyName is returned for a field without a name.
	ErrEmptyName = errors.New(errors.CodeInvalidInput, "multipart: field name is empty")

	// ErrNilFile is returned for a file field whose value is a nil *File.
	ErrNilFile = errors.New(errors.CodeInvalidInput, "multipart: file value is nil")

	// ErrBoundaryCollision is returned when no boundary could be found that
	// does not occur inside the field contents.
	ErrBoundaryCollision = errors.New(errors.CodeInternal, "multipart: boundary occurs in body content")
)

// Value is the value of a form field: either Text or *File.
type Value interface {
	isValue()
}

// Text is a plain string field value.
type Text string

func (Text) isValue() {}

// Field is a single named form field.
type Field struct {
	Name  string
	Value Value
}

// TextField returns a field with a plain string value.
func TextField(name, value string) Field {
	return Field{Name: name, Value: Text(value)}
}

// FileField returns a field whose value is the content of f.
func FileField(name string, f *File) Field {
	return Field{Name: name, Value: f}
}

// Encoder serializes fields into a multipart/form-data body.
type Encoder struct {
	boundary func() string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithBoundary makes the encoder use a fixed boundary instead of a random one.
func WithBoundary(boundary string) Option {
	return func(e *Encoder) {
		e.boundary = func() string { return boundary }
	}
}

// NewEncoder creates an Encoder that generates a random boundary per body.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{boundary: NewBoundary}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode serializes fields with a default Encoder.
func Encode(fields []Field) ([]byte, string, error) {
	return NewEncoder().Encode(fields)
}

// Encode returns the request body and the matching Content-Type header value.
func (e *Encoder) Encode(fields []Field) ([]byte, string, error) {
	ordered, err := order(fields)
	if err != nil {
		return nil, "", err
	}

	boundary, err := e.pickBoundary(ordered)
	if err != nil {
		return nil, "", err
	}

	delimiter := "--" + boundary + crlf

	var buf bytes.Buffer
	for _, f := range ordered {
		buf.WriteString(delimiter)
		writePart(&buf, f)
	}
	buf.WriteString("--" + boundary + "--")

	return buf.Bytes(), ContentTypePrefix + boundary, nil
}

func (e *Encoder) pickBoundary(fields []Field) (string, error) {
	for range boundaryAttempts {
		b := e.boundary()
		if !collides(fields, b) {
			return b, nil
		}
	}
	return "", ErrBoundaryCollision
}

// order validates fields and moves file fields behind text fields, keeping the
// relative order within each group.
func order(fields []Field) ([]Field, error) {
	texts := make([]Field, 0, len(fields))
	var files []Field

	for _, f := range fields {
		if f.Name == "" {
			return nil, ErrEmptyName
		}
		switch v := f.Value.(type) {
		case Text:
			texts = append(texts, f)
		case *File:
			if v == nil {
				return nil, errors.WrapWithContext(ErrNilFile, errors.CodeInvalidInput,
					"encode field", map[string]any{"field": f.Name})
			}
			files = append(files, f)
		default:
			panic(fmt.Sprintf("multipart: unsupported value type %T for field %q", f.Value, f.Name))
		}
	}

	return append(texts, files...), nil
}

func writePart(buf *bytes.Buffer, f Field) {
	name := EscapeName(f.Name)

	switch v := f.Value.(type) {
	case Text:
		buf.WriteString(`Content-Disposition: form-data; name="` + name + `"` + crlf)
		buf.WriteString(crlf)
		buf.WriteString(string(v))
	case *File:
		buf.WriteString(`Content-Disposition: form-data; name="` + name + `"; filename="` + v.Name() + `"` + crlf)
		buf.WriteString("Content-Type: " + v.MimeType() + crlf)
		buf.WriteString("Content-Length: " + strconv.FormatInt(v.Size(), 10) + crlf)
		buf.WriteString("Content-Transfer-Encoding: binary" + crlf)
		buf.WriteString(crlf)
		buf.Write(v.data)
	}
	buf.WriteString(crlf)
}

func collides(fields []Field, boundary string) bool {
	marker := []byte("--" + boundary)
	for _, f := range fields {
		switch v := f.Value.(type) {
		case Text:
			if strings.Contains(string(v), string(marker)) {
				return true
			}
		case *File:
			if bytes.Contains(v.data, marker) {
				return true
			}
		}
	}
	return false
}

// NewBoundary returns a random boundary made of two numbers joined by a fixed
// separator.
func NewBoundary() string {
	return strconv.Itoa(rand.IntN(1000000)) + boundarySeparator + strconv.Itoa(rand.IntN(1000000))
}

// EscapeName percent-encodes every byte of name outside [A-Za-z0-9_.-] using
// lowercase hex.
func EscapeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isSafe(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02x", c)
	}
	return b.String()
}

func isSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-':
		return true
	}
	return false
}
