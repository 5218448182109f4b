package modinfo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileName is the metadata file every mod folder carries.
const FileName = "mod.info"

// Well-known mod.info keys.
const (
	KeyID          = "id"
	KeyName        = "name"
	KeyDescription = "description"
	KeyPoster      = "poster"
)

var (
	// ErrFieldNotFound is returned when a requested key has no line in the file.
	ErrFieldNotFound = errors.New("field not found")
	// ErrInvalidEncoding is returned for content that is neither UTF-8 nor BOM-marked UTF-16.
	ErrInvalidEncoding = errors.New("invalid text encoding")
)

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Field is a single key=value line.
type Field struct {
	Key   string
	Value string
}

// Info holds the parsed fields of one mod.info file in file order.
type Info struct {
	Path   string
	Fields []Field
}

// ExtractField reads path and returns the value of field.
// Keys are matched case-insensitively and the first occurrence wins.
func ExtractField(path, field string) (string, error) {
	info, err := ParseFile(path)
	if err != nil {
		return "", err
	}
	value, ok := info.Field(field)
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrFieldNotFound, field, path)
	}
	return value, nil
}

// ParseFile reads and parses a mod.info file.
func ParseFile(path string) (*Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	info, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// Parse decodes raw mod.info content. Lines end at \n, \r\n or a bare \r;
// lines without '=' are ignored.
func Parse(raw []byte) (*Info, error) {
	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	info := &Info{}
	for _, line := range strings.Split(lineBreaks.Replace(text), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		info.Fields = append(info.Fields, Field{Key: key, Value: strings.TrimSpace(value)})
	}
	return info, nil
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// decode strips a UTF-8 BOM and transcodes BOM-marked UTF-16.
func decode(raw []byte) (string, error) {
	utf16 := bytes.HasPrefix(raw, utf16LEBOM) || bytes.HasPrefix(raw, utf16BEBOM)
	if !utf16 && !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return string(out), nil
}

// Field returns the first value stored under key.
func (i *Info) Field(key string) (string, bool) {
	for _, f := range i.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

func (i *Info) Name() (string, bool)        { return i.Field(KeyName) }
func (i *Info) ID() (string, bool)          { return i.Field(KeyID) }
func (i *Info) Description() (string, bool) { return i.Field(KeyDescription) }
func (i *Info) Poster() (string, bool)      { return i.Field(KeyPoster) }
