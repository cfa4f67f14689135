package runtime

import (
	"context"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// emptyPromptOutput is returned by llm nodes that would otherwise contact a
// provider with nothing to say.
const emptyPromptOutput = "Error: Prompt is empty. Please enter a prompt or connect an input."

// executeNode dispatches to the executor for the node's type. Every branch
// returns a value: failures inside executors degrade into text outputs so a
// single broken node never aborts the run.
func (e *Engine) executeNode(ctx context.Context, node domain.Node, inputs map[string]any) domain.Output {
	switch node.Type {
	case domain.NodeTypeInput:
		return e.executeInput(inputs)
	case domain.NodeTypePrompt:
		return e.executePrompt(node, inputs)
	case domain.NodeTypeModel:
		return e.executeModel(ctx, node, inputs)
	case domain.NodeTypeRag:
		return e.executeRag(ctx, node, inputs)
	case domain.NodeTypeOutput:
		return e.executeOutput(inputs)
	default:
		// Unknown types pass a nil output downstream instead of failing,
		// so graphs built against a newer node catalog still run.
		return domain.Output{"output": nil}
	}
}

func (e *Engine) executeInput(inputs map[string]any) domain.Output {
	val, ok := inputs["value"]
	if !ok {
		val = ""
	}
	return domain.Output{"output": val}
}

func (e *Engine) executePrompt(node domain.Node, inputs map[string]any) domain.Output {
	cfg := decodePromptConfig(node.Config)
	return domain.TextOutput(formatTemplate(cfg.Template, inputs))
}

func (e *Engine) executeOutput(inputs map[string]any) domain.Output {
	val, ok := inputs["input"]
	if !ok {
		val = ""
	}
	return domain.Output{"output": val}
}

func (e *Engine) executeModel(ctx context.Context, node domain.Node, inputs map[string]any) domain.Output {
	cfg := decodeModelConfig(node.Config)

	// Prompt sources, in order: static prompt from the node config, dynamic
	// prompt from the "prompt" handle, context from the "context" handle.
	static := cfg.Prompt
	dynamic := domain.Stringify(inputs["prompt"])
	contextText := domain.Stringify(domain.Unwrap(inputs["context"]))

	prompt := composePrompt(static, dynamic, contextText)
	if prompt == "" {
		return domain.TextOutput(emptyPromptOutput)
	}

	if e.dispatcher == nil {
		return domain.TextOutput("Error: no model provider configured")
	}
	return e.dispatcher.Dispatch(ctx, DispatchRequest{
		Model:     cfg.Model,
		Prompt:    prompt,
		WebSearch: cfg.WebSearch,
		SearchKey: cfg.SerpKey,
	})
}

func (e *Engine) executeRag(ctx context.Context, node domain.Node, inputs map[string]any) domain.Output {
	cfg := decodeRagConfig(node.Config)
	query := domain.Stringify(inputs["query"])

	if e.retriever == nil {
		return domain.TextOutput("Error: no knowledge index configured")
	}
	return e.retriever.Retrieve(ctx, query, cfg.FileName, cfg.EmbeddingModel)
}
