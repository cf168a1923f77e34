// Package legacy holds the v1/v2 wire shapes the upgrader accepts, plus the
// v1->v2 transformer and the default ReAct config synthesized for agents
// with no stored graph. Nothing outside upgrader should import this package
// directly — v1/v2 payloads are never produced, only consumed.
package legacy

// NodeType is the v2 node type tag.
type NodeType string

const (
	NodeTypeLLM       NodeType = "llm"
	NodeTypeTool      NodeType = "tool"
	NodeTypeTransform NodeType = "transform"
	NodeTypeComponent NodeType = "component"
)

// ConditionType is a v2 built-in edge condition.
type ConditionType string

const (
	ConditionHasToolCalls ConditionType = "has_tool_calls"
	ConditionNoToolCalls  ConditionType = "no_tool_calls"
)

// ConditionOperator is a v2 custom-condition comparison operator, using the
// same closed vocabulary v3 predicates use.
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "eq"
	OperatorNotEquals ConditionOperator = "neq"
	OperatorTruthy    ConditionOperator = "truthy"
	OperatorFalsy     ConditionOperator = "falsy"
)

// ReducerType is a v2 state reducer tag.
type ReducerType string

const (
	ReducerReplace     ReducerType = "replace"
	ReducerAddMessages ReducerType = "add_messages"
)

// CustomCondition is a v2 predicate-style edge condition.
type CustomCondition struct {
	StateKey string
	Operator ConditionOperator
	Value    any
}

// Condition is a tagged union over v2's edge.condition: nil (unconditional),
// a ConditionType literal, or a CustomCondition.
type Condition struct {
	Builtin ConditionType
	Custom  *CustomCondition
}

func (c *Condition) isSet() bool {
	return c != nil && (c.Builtin != "" || c.Custom != nil)
}

// Position is v2's editor layout hint for a node.
type Position struct {
	X, Y float64
}

type LLMNodeConfig struct {
	PromptTemplate      string
	OutputKey           string
	ModelOverride       *string
	TemperatureOverride *float64
	MaxTokens           *int
	ToolsEnabled        bool
	ToolFilter          []string
	MaxIterations       int
	MessageKey          *string
}

type ToolNodeConfig struct {
	ExecuteAll     bool
	ToolFilter     []string
	OutputKey      string
	TimeoutSeconds int
}

type TransformNodeConfig struct {
	Template  string
	OutputKey string
	InputKeys []string
}

type ComponentRef struct {
	Key     string
	Version string
}

type ComponentNodeConfig struct {
	ComponentRef    ComponentRef
	ConfigOverrides map[string]any
}

// GraphNodeConfig is a v2 node: at most one of the *Config fields is set,
// selected by Type.
type GraphNodeConfig struct {
	ID          string
	Name        string
	Type        NodeType
	Description *string
	Position    *Position

	LLMConfig       *LLMNodeConfig
	ToolConfig      *ToolNodeConfig
	TransformConfig *TransformNodeConfig
	ComponentConfig *ComponentNodeConfig
}

type GraphEdgeConfig struct {
	FromNode  string
	ToNode    string
	Condition *Condition
	Priority  int
	Label     *string
}

type StateFieldSchema struct {
	Type        string
	Description *string
	Default     any
	Reducer     ReducerType
}

// GraphConfig is the v2 payload shape. Metadata and PromptConfig are carried
// as loosely-typed maps, matching how v2 stored them, and the global
// ToolConfig keeps only tool_filter: callers never round-trip a v2 config back out, so there is
// no pressure to give every historical metadata key a typed field.
type GraphConfig struct {
	Version               string
	Nodes                 []GraphNodeConfig
	Edges                 []GraphEdgeConfig
	EntryPoint             string
	CustomStateFields      map[string]StateFieldSchema
	Metadata               map[string]any
	MaxExecutionTimeSeconds *int
	PromptConfig           map[string]any
	ToolConfig             *ToolFilterConfig
}

// ToolFilterConfig is v2's graph-wide tool allow-list, distinct from a
// per-node ToolNodeConfig.
type ToolFilterConfig struct {
	ToolFilter []string
}
