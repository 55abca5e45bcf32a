package util

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// NewXMLDecoder returns a decoder that honours the encoding declared in the
// XML prolog (ISO-8859-1 and windows-1252 exports are common in SNDB dumps)
func NewXMLDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// EachElement streams r and calls fn for every start element whose local
// name is local. fn must consume the element (usually via DecodeElement).
// The context is checked between elements.
func EachElement(ctx context.Context, r io.Reader, local string, fn func(dec *xml.Decoder, start xml.StartElement) error) error {
	dec := NewXMLDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(dec, start); err != nil {
			return err
		}
	}
}
