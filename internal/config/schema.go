package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "tap.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("adding config schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// checkSchema validates a decoded document against the embedded schema and
// returns one message per failing leaf.
func checkSchema(doc map[string]any) []string {
	schema, err := compileSchema()
	if err != nil {
		return []string{err.Error()}
	}

	// TOML and YAML decoders produce their own numeric and date types; a JSON
	// round trip normalizes them to what the validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return []string{fmt.Sprintf("config is not representable as JSON: %v", err)}
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return []string{fmt.Sprintf("config is not representable as JSON: %v", err)}
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var errs []string
	collectLeaves(verr, &errs)
	return errs
}

func collectLeaves(verr *jsonschema.ValidationError, out *[]string) {
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, verr.Message))
		return
	}
	for _, c := range verr.Causes {
		collectLeaves(c, out)
	}
}
