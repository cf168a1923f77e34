package legacy

import "encoding/json"

// DetectVersion reads schema_version (preferred), else version, else assumes
// "1.0" when neither is present.
func DetectVersion(data []byte) string {
	var probe struct {
		SchemaVersion string `json:"schema_version"`
		Version       string `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "1.0"
	}
	if probe.SchemaVersion != "" {
		return probe.SchemaVersion
	}
	if probe.Version != "" {
		return probe.Version
	}
	return "1.0"
}

// MigrateV1ToV2 transforms a v1 payload into the v2 typed shape. v1 payloads
// are treated as having the same node/edge fields and config nesting as v2,
// so they are decoded with ParseV2 unchanged; this function exists as the
// named seam the upgrader calls so a real structural
// difference (should one turn up in an actual v1 deployment) has somewhere
// to live without reshaping the upgrader's control flow.
func MigrateV1ToV2(data []byte) (*GraphConfig, error) {
	return ParseV2(data)
}
