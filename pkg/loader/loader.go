// Package loader reads and writes editable trees as JSON, YAML or TOML.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/ye/internal/tree"
)

var (
	// ErrNotExist is returned by ReadTree when the file is missing.
	ErrNotExist = errors.New("file does not exist")
	// ErrUnknownFormat is returned when a format name is not recognized.
	ErrUnknownFormat = errors.New("unknown format")
)

// Format is a serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Sniff guesses the format from content.
func Sniff(data []byte) Format {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") || (strings.HasPrefix(trimmed, "[") && !isLikelyTOML(trimmed)) {
		return FormatJSON
	}
	if isLikelyTOML(trimmed) {
		return FormatTOML
	}
	return FormatYAML
}

// ReadTree loads the file at path. A missing file yields ErrNotExist along
// with the format implied by the extension, so callers can start a new
// document.
func ReadTree(path string) (any, Format, error) {
	format, known := FormatFromPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !known {
				format = FormatYAML
			}
			return nil, format, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, format, err
	}
	if !known {
		format = Sniff(data)
	}
	root, err := Decode(data, format)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", path, err)
	}
	return root, format, nil
}

// WriteTree encodes root in format and writes it to path.
func WriteTree(path string, root any, format Format) error {
	data, err := Encode(root, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // documents are user files
}

// Decode parses data into a tree. JSON and YAML keep key order; TOML
// tables come back with sorted keys.
func Decode(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return tree.NewMap(), nil
	}
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			var probe any
			err := json.Unmarshal(data, &probe)
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return decodeYAML(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return tree.FromPlain(normalizeTOML(doc), nil), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// decodeYAML also handles JSON, which is a YAML subset for our purposes.
func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return tree.FromYAML(&doc)
}

// Encode serializes root in format.
func Encode(root any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(root); err != nil {
			return nil, fmt.Errorf("encode JSON: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		if _, ok := root.(*tree.Map); !ok {
			return nil, errors.New("encode TOML: document root must be a table")
		}
		plain, _ := tree.ToPlain(root)
		out, err := toml.Marshal(plain)
		if err != nil {
			return nil, fmt.Errorf("encode TOML: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// normalizeTOML turns date and time values into strings so every scalar in
// the tree is one the scalar codec can print and parse back.
func normalizeTOML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeTOML(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeTOML(e)
		}
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		return fmt.Sprint(t)
	}
	return v
}

var (
	tomlSection  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML reports whether input has a table header or mostly
// key = value lines.
func isLikelyTOML(input string) bool {
	sections, pairs, lines := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			pairs++
		}
	}
	return sections > 0 || (lines > 0 && pairs > lines/2)
}
