package loader

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/jsonc"
)

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeJSONC strips comments and trailing commas before decoding.
func decodeJSONC(data []byte, v any) error {
	return decodeJSON(jsonc.ToJSON(data), v)
}
