package resume

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrMalformedResponse means the reply is not a JSON object of the expected shape.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrIncompleteResponse means the reply parsed but lacks required keys.
	ErrIncompleteResponse = errors.New("incomplete model response")
)

//go:embed schema/resume.schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func recordSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	})
	return compiledSchema, schemaErr
}

// Violation is one schema failure, keyed by its JSON path.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError lists the schema violations of a model reply. It unwraps to
// ErrIncompleteResponse or ErrMalformedResponse.
type SchemaError struct {
	Kind       error
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error { return e.Kind }

var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// StripFences returns the body of the first fenced code block, or the whole
// reply when there is none.
func StripFences(raw string) string {
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// Normalize turns a raw model reply into a Record. It never fills in missing
// data: a reply that does not parse, or parses to the wrong shape, fails.
func Normalize(raw string) (Record, error) {
	body := StripFences(raw)
	if body == "" {
		return Record{}, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return Record{}, fmt.Errorf("%w: top-level value is not an object", ErrMalformedResponse)
	}

	schema, err := recordSchema()
	if err != nil {
		return Record{}, fmt.Errorf("load record schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		return Record{}, schemaError(result.Errors())
	}

	var rec Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	rec.canonicalize()
	return rec, nil
}

// schemaError reports missing keys as incomplete; any other violation makes
// the whole reply malformed.
func schemaError(results []gojsonschema.ResultError) error {
	out := &SchemaError{Kind: ErrIncompleteResponse}
	for _, desc := range results {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		out.Violations = append(out.Violations, Violation{Field: field, Message: desc.Description()})
		if desc.Type() != "required" {
			out.Kind = ErrMalformedResponse
		}
	}
	return out
}
