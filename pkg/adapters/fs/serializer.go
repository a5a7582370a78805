package fs

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one parsed record document. A single file may hold several
// documents (a YAML or JSON list, or the rows of a CSV file).
type Document struct {
	// ID is the slash-separated path relative to the vault, without the
	// extension. Collection members get a "#<n>" suffix.
	ID       string
	Metadata map[string]any
	Content  string
}

// Serializer reads one file format.
type Serializer interface {
	Parse(r io.Reader) ([]Document, error)
}

// DefaultSerializers returns the standard set of serializers.
func DefaultSerializers(strict bool) map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(strict),
		".yml":  NewYAMLSerializer(strict),
		".csv":  NewCSVSerializer(strict),
		".md":   NewMarkdownSerializer(strict),
	}
}

// --- JSON Serializer ---

// JSONSerializer reads a JSON object or an array of objects.
type JSONSerializer struct {
	// Strict decodes numbers as json.Number to avoid precision loss.
	Strict bool
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(r io.Reader) ([]Document, error) {
	var payload any
	decoder := json.NewDecoder(r)
	if s.Strict {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return documents(payload)
}

// --- YAML Serializer ---

// YAMLSerializer reads a YAML mapping or a sequence of mappings.
type YAMLSerializer struct {
	// Strict converts numbers to json.Number, matching JSON strict mode.
	Strict bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(r io.Reader) ([]Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if s.Strict {
		payload = recursiveNormalize(payload)
	}
	return documents(payload)
}

// --- Markdown Serializer ---

// MarkdownSerializer reads a Markdown file with optional YAML frontmatter.
type MarkdownSerializer struct {
	Strict bool
}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer(strict bool) *MarkdownSerializer {
	return &MarkdownSerializer{Strict: strict}
}

func (s *MarkdownSerializer) Parse(r io.Reader) ([]Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := Document{Metadata: make(map[string]any)}

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Content = string(data)
		return []Document{doc}, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) == 1 {
		return nil, errors.New("frontmatter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(parts[0], &doc.Metadata); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}

	doc.Content = strings.TrimPrefix(string(parts[1]), "\r")
	doc.Content = strings.TrimPrefix(doc.Content, "\n")

	if s.Strict {
		doc.Metadata = recursiveNormalize(doc.Metadata).(map[string]any)
	}
	return []Document{doc}, nil
}

// --- CSV Serializer ---

// CSVSerializer reads a header row followed by one document per row.
type CSVSerializer struct {
	Strict bool
}

// NewCSVSerializer creates a new CSV serializer.
func NewCSVSerializer(strict bool) *CSVSerializer {
	return &CSVSerializer{Strict: strict}
}

func (s *CSVSerializer) Parse(r io.Reader) ([]Document, error) {
	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var docs []Document
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if len(row) != len(headers) {
			return nil, fmt.Errorf("csv row %d: length mismatch", len(docs)+1)
		}

		doc := Document{Metadata: make(map[string]any)}
		for i, h := range headers {
			if strings.EqualFold(h, "content") {
				doc.Content = row[i]
				continue
			}
			doc.Metadata[h] = UnmarshalCSVValue(strings.TrimSpace(row[i]), s.Strict)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// --- Helpers ---

// documents splits a decoded payload into documents. A "content" key
// becomes the document content.
func documents(payload any) ([]Document, error) {
	var items []any
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		items = []any{v}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("unexpected top-level %T", payload)
	}

	docs := make([]Document, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a mapping, got %T", i, item)
		}
		doc := Document{Metadata: m}
		if c, ok := m["content"].(string); ok {
			doc.Content = c
			delete(m, "content")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// UnmarshalCSVValue parses a cell as JSON when it looks like an object or
// an array, and returns it as a string otherwise.
//
// CAVEAT: a plain string that happens to be valid JSON (e.g. "[1]") is
// decoded.
func UnmarshalCSVValue(val string, strict bool) any {
	if (strings.HasPrefix(val, "{") && strings.HasSuffix(val, "}")) ||
		(strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]")) {
		var parsed any
		decoder := json.NewDecoder(strings.NewReader(val))
		if strict {
			decoder.UseNumber()
		}
		if err := decoder.Decode(&parsed); err == nil {
			return parsed
		}
	}
	return val
}

// recursiveNormalize converts numeric values to json.Number so YAML and
// JSON strict mode agree.
func recursiveNormalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = recursiveNormalize(val)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = recursiveNormalize(val)
		}
		return l
	case int:
		return json.Number(fmt.Sprintf("%d", v))
	case int64:
		return json.Number(fmt.Sprintf("%d", v))
	case float64:
		return json.Number(fmt.Sprintf("%v", v))
	default:
		return v
	}
}
