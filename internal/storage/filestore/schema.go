package filestore

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var documentSchema = gojsonschema.NewStringLoader(schemaJSON)

// validateDocument checks a decoded document against the embedded schema.
func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)

	return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
}
