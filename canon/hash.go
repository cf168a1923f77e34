package canon

import (
	"encoding/hex"
	"encoding/json"

	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/zeebo/blake3"
)

// wireConfig mirrors ir.GraphConfig with stable json tags. Map-valued fields
// (state schema/reducers, config overrides) are serialized as-is: Go's
// encoding/json already emits map[string]T keys in sorted order, so no
// further normalization is needed for content-addressed equality.
type wireConfig struct {
	SchemaVersion string         `json:"schema_version"`
	Key           string         `json:"key"`
	Revision      int            `json:"revision"`
	Graph         ir.GraphIR     `json:"graph"`
	State         ir.StateContract `json:"state"`
	Deps          *ir.GraphDeps  `json:"deps,omitempty"`
	Limits        ir.Limits      `json:"limits"`
	Metadata      *ir.GraphMetadata `json:"metadata,omitempty"`
}

// CanonicalJSON serializes a canonicalized GraphConfig deterministically.
// UI data is excluded: it never participates in content-addressed equality.
func CanonicalJSON(cfg ir.GraphConfig) ([]byte, error) {
	w := wireConfig{
		SchemaVersion: cfg.SchemaVersion,
		Key:           cfg.Key,
		Revision:      cfg.Revision,
		Graph:         cfg.Graph,
		State:         cfg.State,
		Deps:          cfg.Deps,
		Limits:        cfg.Limits,
		Metadata:      cfg.Metadata,
	}
	return json.Marshal(w)
}

// Hash returns the hex-encoded blake3 digest of cfg's canonical JSON.
// Callers must pass an already-canonicalized config (see Canonicalize);
// Hash does not canonicalize on its own so that callers can assert
// idempotence against a config they canonicalized themselves.
func Hash(cfg ir.GraphConfig) (string, error) {
	data, err := CanonicalJSON(cfg)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
