package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec converts the dataset to and from its stored representation.
type Codec interface {
	Name() string
	Marshal(data AppData) ([]byte, error)
	Unmarshal(raw []byte, data *AppData) error
}

// JSONCodec is the default codec. Its output is the documented on-disk layout.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(data AppData) ([]byte, error) {
	return json.Marshal(data)
}

func (JSONCodec) Unmarshal(raw []byte, data *AppData) error {
	return json.Unmarshal(raw, data)
}

// YAMLCodec stores the dataset as a YAML document with the same field names.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Marshal(data AppData) ([]byte, error) {
	return yaml.Marshal(data)
}

func (YAMLCodec) Unmarshal(raw []byte, data *AppData) error {
	// yaml.v3 accepts an empty document without error; treat it as invalid content.
	if len(strings.TrimSpace(string(raw))) == 0 {
		return fmt.Errorf("empty yaml document")
	}
	return yaml.Unmarshal(raw, data)
}

// CodecByName resolves "json" (or "") and "yaml"/"yml".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", name)
	}
}
