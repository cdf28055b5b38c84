// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

// ErrUnknownEncoding is returned when an encoding label is not a WHATWG
// encoding name.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Document is the full text of one source file. Rules read it and never
// modify it.
type Document struct {
	// Path is the file the text was read from.
	Path string

	// Encoding is the label the bytes were decoded with.
	Encoding string

	// Text is the decoded content with line endings normalized to "\n".
	Text string
}

// Load reads path and decodes it with the named encoding. Byte sequences
// that are invalid in that encoding become U+FFFD. "\r\n" and lone "\r"
// line endings are normalized to "\n" so line-based patterns see one
// terminator.
func Load(path, encodingLabel string) (*Document, error) {
	if encodingLabel == "" {
		encodingLabel = types.DefaultEncoding
	}
	dec, err := decoderFor(encodingLabel)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := decode(dec, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", path, encodingLabel, err)
	}

	return &Document{
		Path:     path,
		Encoding: encodingLabel,
		Text:     text,
	}, nil
}

// ValidateEncoding reports whether label names a supported encoding.
func ValidateEncoding(label string) error {
	if label == "" {
		return nil
	}
	_, err := decoderFor(label)
	return err
}

func decoderFor(label string) (*encoding.Decoder, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return enc.NewDecoder(), nil
}

func decode(dec *encoding.Decoder, raw []byte) (string, error) {
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	return normalizeNewlines(string(out)), nil
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
