package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// Retriever serves context snippets for RAG nodes. Failures degrade into the
// returned output, never into an error.
type Retriever interface {
	Retrieve(ctx context.Context, query, documentRef, embeddingModel string) domain.Output
}

// Engine executes workflow graphs. It validates structure, computes a
// deterministic topological order, and runs one executor per node type.
// All collaborators are injected; the engine holds no ambient state.
type Engine struct {
	dispatcher *Dispatcher
	retriever  Retriever
	logger     *slog.Logger
	metrics    *Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDispatcher sets the model dispatcher used by llm nodes.
func WithDispatcher(d *Dispatcher) EngineOption {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithRetriever sets the knowledge retriever used by rag nodes.
func WithRetriever(r Retriever) EngineOption {
	return func(e *Engine) {
		e.retriever = r
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics registers execution metrics.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine with the given options. An engine without a
// dispatcher or retriever still runs graphs; the affected node types degrade
// to explanatory text outputs.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the graph against the named runtime inputs and returns the
// outputs of every output-type node, keyed by node id.
//
// Structural problems (an edge referencing a missing node, a cycle) abort
// before any node executes. Failures inside a node never abort the run: the
// node records an explanatory text output and downstream nodes continue.
func (e *Engine) Execute(ctx context.Context, graph *domain.Graph, inputs map[string]any) (map[string]domain.Output, error) {
	start := time.Now()

	order, err := executionOrder(graph)
	if err != nil {
		return nil, err
	}

	nodeByID := make(map[string]domain.Node, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodeByID[n.ID] = n
	}

	// ExecutionState: write-once per node id, discarded at run end.
	state := make(map[string]domain.Output, len(graph.Nodes))
	finalOutputs := make(map[string]domain.Output)

	for _, nodeID := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node := nodeByID[nodeID]
		bundle := resolveInputs(node, graph.Edges, state, inputs)

		e.logger.Debug("executing node", "node_id", node.ID, "type", node.Type)
		out := e.executeNode(ctx, node, bundle)
		state[node.ID] = out
		e.metrics.ObserveNode(string(node.Type))

		if node.Type == domain.NodeTypeOutput {
			finalOutputs[node.ID] = out
		}
	}

	e.metrics.ObserveRun(time.Since(start))
	return finalOutputs, nil
}

// executionOrder validates the graph and returns a topological order using
// Kahn's algorithm. Ties are broken FIFO by node declaration order, so
// repeated runs on an unchanged graph enumerate nodes identically.
func executionOrder(graph *domain.Graph) ([]string, error) {
	exists := make(map[string]bool, len(graph.Nodes))
	for _, n := range graph.Nodes {
		exists[n.ID] = true
	}

	adj := make(map[string][]string, len(graph.Nodes))
	inDegree := make(map[string]int, len(graph.Nodes))
	for _, edge := range graph.Edges {
		if !exists[edge.Source] || !exists[edge.Target] {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrMalformedEdge, edge.Source, edge.Target)
		}
		adj[edge.Source] = append(adj[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	queue := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(graph.Nodes))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)
		for _, v := range adj[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(order) != len(graph.Nodes) {
		return nil, domain.ErrCycleDetected
	}
	return order, nil
}

// resolveInputs binds upstream outputs onto the node's named input handles.
// Structured upstream values are unwrapped to their "output" field. When
// several edges target the same handle the last edge wins (edge order is
// significant; see the graph model docs).
func resolveInputs(node domain.Node, edges []domain.Edge, state map[string]domain.Output, runtimeInputs map[string]any) map[string]any {
	bundle := make(map[string]any)
	for _, edge := range edges {
		if edge.Target != node.ID {
			continue
		}
		src, ok := state[edge.Source]
		if !ok {
			continue
		}
		bundle[edge.TargetHandle] = domain.Unwrap(src)
	}

	if node.Type == domain.NodeTypeInput {
		cfg := decodeInputConfig(node.Config)
		val, ok := runtimeInputs[cfg.Key]
		if !ok {
			val = ""
		}
		bundle["value"] = val
	}
	return bundle
}
