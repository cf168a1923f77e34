package ir

// StateFieldType is a closed set of scalar/collection types a state schema
// entry may declare.
type StateFieldType string

const (
	TypeString StateFieldType = "string"
	TypeInt    StateFieldType = "int"
	TypeFloat  StateFieldType = "float"
	TypeBool   StateFieldType = "bool"
	TypeList   StateFieldType = "list"
	TypeDict   StateFieldType = "dict"
	TypeAny    StateFieldType = "any"
)

// ReducerKind selects how concurrent writes to a state path are merged.
type ReducerKind string

const (
	ReducerReplace     ReducerKind = "replace"
	ReducerAddMessages ReducerKind = "add_messages"
)

// StateFieldSchema describes one declared path in the graph's state.
type StateFieldSchema struct {
	Type        StateFieldType
	Description string
	Default     any
}

// MessagesPath and ExecutionContextPath are implicit state paths every graph
// carries regardless of declared schema: the running transcript and the
// per-run scheduling metadata exposed to predicates.
const (
	MessagesPath         = "messages"
	ExecutionContextPath = "execution_context"
)

// StateContract declares the shape of a graph's state and how concurrent
// writers merge into each path. Paths absent from Reducers default to
// ReducerReplace, except MessagesPath which defaults to ReducerAddMessages.
type StateContract struct {
	Schema   map[string]StateFieldSchema
	Reducers map[string]ReducerKind
}

// ReducerFor returns the effective reducer for path, applying the built-in
// default for MessagesPath when none is declared.
func (c StateContract) ReducerFor(path string) ReducerKind {
	if r, ok := c.Reducers[path]; ok {
		return r
	}
	if path == MessagesPath {
		return ReducerAddMessages
	}
	return ReducerReplace
}
