package upgrader

import (
	"encoding/json"
	"strings"

	"github.com/xyzen-dev/agentgraph/canon"
	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/legacy"
	"github.com/xyzen-dev/agentgraph/parser"
	"github.com/xyzen-dev/agentgraph/validate"
)

// Result is the structured outcome of a migration: the version the payload
// was detected as, the canonical config it produced, and every non-fatal
// warning collected along the way.
type Result struct {
	SourceVersion string
	Config        ir.GraphConfig
	Warnings      []Warning
}

// Upgrade detects a raw payload's schema version and brings it to canonical
// v3, failing fast with a tagged *Error when that cannot be done safely.
func Upgrade(data []byte) (*Result, error) {
	sourceVersion := legacy.DetectVersion(data)
	var warnings []Warning

	if strings.HasPrefix(sourceVersion, "3.") {
		cfg, err := parser.Parse(data)
		if err != nil {
			return nil, fail("INVALID_V3_CONFIG", "graph_config", "%v", err)
		}
		canonical := canon.Canonicalize(*cfg)
		if verrs := validate.Validate(canonical); len(verrs) > 0 {
			return nil, fail("INVALID_V3_CONFIG", "graph_config", "%v", verrs)
		}
		return &Result{SourceVersion: sourceVersion, Config: canonical, Warnings: warnings}, nil
	}

	if isExplicitEmptyGraph(data) {
		return nil, fail("EMPTY_GRAPH", "graph_config.nodes", "empty graph cannot be auto-migrated")
	}

	var v2 *legacy.GraphConfig
	var err error
	if strings.HasPrefix(sourceVersion, "2.") {
		v2, err = legacy.ParseV2(data)
		if err != nil {
			return nil, fail("INVALID_V2_CONFIG", "graph_config", "%v", err)
		}
	} else {
		if !strings.HasPrefix(sourceVersion, "1.") {
			warnings = append(warnings, Warning{
				Code: "UNKNOWN_VERSION_TREATED_AS_V1", Path: "graph_config.version",
				Message: "unknown version \"" + sourceVersion + "\" treated as v1 payload",
			})
		}
		v2, err = legacy.MigrateV1ToV2(data)
		if err != nil {
			return nil, fail("INVALID_V1_CONFIG", "graph_config", "%v", err)
		}
		warnings = append(warnings, Warning{
			Code: "UPGRADED_V1_TO_V2", Path: "graph_config.version",
			Message: "migrated through legacy v1->v2 transformer before conversion",
		})
	}

	v3, allWarnings, err := convertV2ToV3(v2, sourceVersion, warnings)
	warnings = allWarnings
	if err != nil {
		return nil, err
	}

	canonical := canon.Canonicalize(*v3)
	if verrs := validate.Validate(canonical); len(verrs) > 0 {
		return nil, fail("INVALID_MIGRATED_V3_CONFIG", "graph_config", "%v", verrs)
	}

	return &Result{SourceVersion: sourceVersion, Config: canonical, Warnings: warnings}, nil
}

// UpgradeOrCreateDefault upgrades data, or — when data is nil — synthesizes
// a default single-agent ReAct graph around agentPrompt before upgrading it.
func UpgradeOrCreateDefault(data []byte, agentPrompt string) (*Result, error) {
	if data != nil {
		return Upgrade(data)
	}

	prompt := agentPrompt
	if prompt == "" {
		prompt = "You are a helpful assistant."
	}
	v2 := legacy.CreateReactConfig(prompt)
	defaultWarning := Warning{
		Code: "DEFAULT_GRAPH_FROM_NULL", Path: "graph_config",
		Message: "graph_config was nil; generated default ReAct config before migration",
	}
	v3, warnings, err := convertV2ToV3(v2, "2.0", []Warning{defaultWarning})
	if err != nil {
		return nil, err
	}

	canonical := canon.Canonicalize(*v3)
	if verrs := validate.Validate(canonical); len(verrs) > 0 {
		return nil, fail("INVALID_MIGRATED_V3_CONFIG", "graph_config", "%v", verrs)
	}

	return &Result{SourceVersion: "null", Config: canonical, Warnings: warnings}, nil
}

func isExplicitEmptyGraph(data []byte) bool {
	var probe struct {
		Nodes *[]any `json:"nodes"`
		Graph *struct {
			Nodes *[]any `json:"nodes"`
		} `json:"graph"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	if probe.Nodes != nil && len(*probe.Nodes) == 0 {
		return true
	}
	if probe.Graph != nil && probe.Graph.Nodes != nil && len(*probe.Graph.Nodes) == 0 {
		return true
	}
	return false
}
