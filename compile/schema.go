package compile

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateConfigOverrides checks overrides against a component's declared
// JSON Schema. Compiling the schema on every component node is wasteful for
// a component reused across many nodes, but config_overrides validation
// only runs once per Compile call, not per run, so the cost is a one-time
// compile-time check rather than a hot-path one.
func validateConfigOverrides(schema map[string]any, overrides map[string]any) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("config_overrides.json", strings.NewReader(string(raw))); err != nil {
		return err
	}
	compiled, err := c.Compile("config_overrides.json")
	if err != nil {
		return err
	}

	if overrides == nil {
		overrides = map[string]any{}
	}
	return compiled.Validate(overrides)
}
