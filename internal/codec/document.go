package codec

import (
	"errors"
	"fmt"

	"github.com/dshills/drawstorm/internal/diagram"
)

// Errors returned when decoding.
var (
	ErrEmpty              = errors.New("codec: empty input")
	ErrUnknownCompression = errors.New("codec: unknown compression")
)

// EncodeDocument serializes doc for storage.
func EncodeDocument(doc diagram.Document) ([]byte, error) {
	data, err := Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	return compress(data), nil
}

// DecodeDocument is the inverse of EncodeDocument.
func DecodeDocument(blob []byte) (diagram.Document, error) {
	data, err := decompress(blob)
	if err != nil {
		return diagram.Document{}, err
	}
	var doc diagram.Document
	if err := Unmarshal(data, &doc); err != nil {
		return diagram.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
