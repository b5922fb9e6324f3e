package spec

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	documentSchema = "document.schema.json"
	chartJobSchema = "chart_job.schema.json"
)

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	compiled := make(map[string]*jsonschema.Schema)
	for _, name := range []string{documentSchema, chartJobSchema} {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemaErr = fmt.Errorf("failed to read schema %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("failed to load schema %s: %w", name, err)
			return
		}
		s, err := compiler.Compile(name)
		if err != nil {
			schemaErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
			return
		}
		compiled[name] = s
	}
	schemas = compiled
}

// validateAgainst checks a decoded document against a named schema. Schema
// violations become *reportfmt.ValidationError naming the deepest failing
// location.
func validateAgainst(name string, doc interface{}) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	err := schemas[name].Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return reportfmt.NewValidationError("document", "%v", err)
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = "document"
	}
	return reportfmt.NewValidationError(field, "%s", leaf.Message)
}
