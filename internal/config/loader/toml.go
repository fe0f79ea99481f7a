package loader

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
)

func decodeTOML(data []byte, v any) error {
	return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
}
