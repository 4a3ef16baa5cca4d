// Package catalog loads activity seed data from YAML or JSON files.
//
// A catalog file has the same shape as the GET /activities response: a
// top-level object keyed by activity name. Key order in the file becomes the
// listing order of the registry.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mergington/activities-api/internal/registry"
)

// ErrInvalidCatalog is returned when a catalog document fails schema validation
var ErrInvalidCatalog = errors.New("invalid catalog")

// Load reads and validates the catalog file at path
func Load(path string) ([]registry.Seed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	seeds, err := Parse(data, formatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return seeds, nil
}

// Format is the encoding of a catalog document
type Format string

const (
	// FormatYAML is a YAML document
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON document
	FormatJSON Format = "json"
)

func formatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and validates a catalog document
func Parse(data []byte, format Format) ([]registry.Seed, error) {
	doc := data
	if format != FormatJSON {
		var err error
		doc, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	}

	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	var c registry.Catalog
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return c.Seeds(), nil
}

// yamlToJSON converts a YAML document into JSON, keeping mapping key order
func yamlToJSON(data []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root.Kind == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidCatalog)
	}

	var buf bytes.Buffer
	if err := writeNode(&buf, &root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, node.Content[0])
	case yaml.AliasNode:
		return writeNode(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: unsupported value %q", node.Line, node.Value)
		}
		buf.Write(encoded)
	default:
		return fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
	return nil
}
