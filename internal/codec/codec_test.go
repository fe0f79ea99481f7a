package codec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/drawstorm/internal/diagram"
)

func sampleDocument() diagram.Document {
	doc := diagram.NewDocument("doc-1", "Network")
	return doc.UpdateSheet(doc.CurrentSheetID, func(s diagram.Sheet) diagram.Sheet {
		s = s.WithShapes(
			diagram.Shape{ID: "a", Type: "rectangle", X: 10.5, Y: 20, Width: 40, Height: 30, Props: diagram.Properties{"fill": "#ff0000", "opacity": 0.5}},
			diagram.Shape{ID: "b", Type: "ellipse", X: 100, Y: 80, Width: 20, Height: 20, Rotation: 45},
		)
		s = s.WithConnector(diagram.Connector{
			ID: "ab", Type: diagram.ConnectorOrthogonal, SourceID: "a", TargetID: "b",
			Route: diagram.Route{Source: diagram.Point{X: 50, Y: 35}, Target: diagram.Point{X: 100, Y: 90}, Waypoints: []diagram.Point{{X: 75, Y: 35}}},
		})
		return s.WithSelection([]string{"a"})
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument()

	blob, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("EncodeDocument() error = %v", err)
	}
	got, err := DecodeDocument(blob)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, doc)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	doc := sampleDocument()
	first, err := EncodeDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := EncodeDocument(doc.Clone())
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("EncodeDocument produced different bytes for the same document")
		}
	}
}

func TestCompressionChoice(t *testing.T) {
	small := compress([]byte{1, 2, 3})
	if Compression(small[0]) != CompressionNone {
		t.Errorf("tiny input tag = %s, want none", Compression(small[0]))
	}

	large := []byte(strings.Repeat("rectangle ", 1000))
	packed := compress(large)
	if Compression(packed[0]) != CompressionZstd {
		t.Errorf("repetitive input tag = %s, want zstd", Compression(packed[0]))
	}
	if len(packed) >= len(large) {
		t.Errorf("compressed size %d not smaller than %d", len(packed), len(large))
	}

	for _, blob := range [][]byte{small, packed} {
		if _, err := decompress(blob); err != nil {
			t.Errorf("decompress() error = %v", err)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		want error
	}{
		{"empty", nil, ErrEmpty},
		{"unknown tag", []byte{9, 1, 2}, ErrUnknownCompression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDocument(tt.blob); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := DecodeDocument([]byte{byte(CompressionZstd), 0xde, 0xad}); err == nil {
		t.Error("corrupt zstd body decoded without error")
	}
}

func TestDigest(t *testing.T) {
	doc := sampleDocument()
	d1, err := DigestDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	d2, _ := DigestDocument(doc.Clone())
	if d1 != d2 {
		t.Error("equal documents have different digests")
	}
	if d1.IsZero() {
		t.Error("digest is zero")
	}
	if len(d1.String()) != 64 {
		t.Errorf("hex digest length = %d, want 64", len(d1.String()))
	}

	changed := doc.WithCurrentSheet(doc.CurrentSheetID)
	changed.Name = "Renamed"
	d3, _ := DigestDocument(changed)
	if d3 == d1 {
		t.Error("different documents share a digest")
	}
}

func TestCompressionString(t *testing.T) {
	if CompressionZstd.String() != "zstd" || CompressionNone.String() != "none" {
		t.Error("unexpected compression names")
	}
	if got := Compression(7).String(); got != "unknown(7)" {
		t.Errorf("String() = %q", got)
	}
}
