// Package persist provides codec-based file persistence for set databases.
//
// The canonical on-disk form is the flat text format of package listdb.
// Other codecs either wrap it (LZ4) or offer a structured alternative (JSON).
package persist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// File extensions for supported codecs.
const (
	textExtension = ".txt"
	lz4Extension  = ".lz4"
	jsonExtension = ".json"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how a database is serialized and deserialized.
type Codec interface {
	// Encode writes the database to the writer.
	Encode(w io.Writer, db *listdb.DB) error
	// Decode reads a database from the reader.
	Decode(r io.Reader) (*listdb.DB, error)
	// Extension returns the file extension for this codec (e.g., ".txt", ".lz4").
	Extension() string
}

// TextCodec implements Codec using the flat text format.
type TextCodec struct{}

// Encode implements Codec.Encode.
func (TextCodec) Encode(w io.Writer, db *listdb.DB) error { return db.Write(w) }

// Decode implements Codec.Decode.
func (TextCodec) Decode(r io.Reader) (*listdb.DB, error) { return listdb.Read(r) }

// Extension implements Codec.Extension.
func (TextCodec) Extension() string { return textExtension }

// LZ4Codec implements Codec as an LZ4 frame around the flat text format.
type LZ4Codec struct{}

// Encode implements Codec.Encode.
func (LZ4Codec) Encode(w io.Writer, db *listdb.DB) error {
	zw := lz4.NewWriter(w)

	err := db.Write(zw)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (LZ4Codec) Decode(r io.Reader) (*listdb.DB, error) {
	return listdb.Read(lz4.NewReader(r))
}

// Extension implements Codec.Extension.
func (LZ4Codec) Extension() string { return lz4Extension }

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, db *listdb.DB) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(db)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader) (*listdb.DB, error) {
	var db listdb.DB

	err := json.NewDecoder(r).Decode(&db)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	db.FitDim()

	if err := db.Validate(); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	return &db, nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// CodecFor picks a codec from the file extension of path. Unknown
// extensions use the flat text format.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case lz4Extension:
		return LZ4Codec{}
	case jsonExtension:
		return NewJSONCodec()
	default:
		return TextCodec{}
	}
}

// SaveDB writes db to path using the codec chosen by CodecFor.
func SaveDB(path string, db *listdb.DB) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	err = CodecFor(path).Encode(file, db)
	closeErr := file.Close()

	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", path, closeErr)
	}

	return nil
}

// LoadDB reads a database from path using the codec chosen by CodecFor.
func LoadDB(path string) (*listdb.DB, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	db, err := CodecFor(path).Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return db, nil
}
