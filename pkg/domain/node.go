package domain

// NodeType identifies the execution behavior of a workflow node.
// The set is closed: the engine dispatches on it with an exhaustive switch,
// so adding a type means adding an executor.
type NodeType string

const (
	// NodeTypeInput binds a named runtime input into the graph.
	NodeTypeInput NodeType = "inputNode"
	// NodeTypePrompt renders a template against its bound inputs.
	NodeTypePrompt NodeType = "promptNode"
	// NodeTypeModel composes a prompt and dispatches it to a language model provider.
	NodeTypeModel NodeType = "llmNode"
	// NodeTypeRag retrieves context snippets from an indexed document.
	NodeTypeRag NodeType = "ragNode"
	// NodeTypeOutput marks a sink whose value is returned to the caller.
	NodeTypeOutput NodeType = "outputNode"
)

// Node represents a single unit of work in a workflow graph.
// Config holds type-specific settings (template string, model identifier,
// document reference, input key) and is read-only once a run starts.
type Node struct {
	ID     string         `json:"id" yaml:"id"`
	Type   NodeType       `json:"type" yaml:"type"`
	Config map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Edge is a directed data dependency between two nodes' named ports.
// SourceHandle and TargetHandle distinguish multiple logical values on a
// single node (e.g. "prompt", "context", "query").
type Edge struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Graph is a workflow definition: a set of uniquely identified nodes plus an
// ordered sequence of edges. The edge relation must be acyclic and every
// endpoint must reference an existing node.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}
