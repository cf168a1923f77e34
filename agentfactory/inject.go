package agentfactory

import "strings"

// nodePromptTag delimits a node's own prompt once layered underneath a
// caller-supplied system prompt, so neither is silently discarded.
const nodePromptTag = "NODE_PROMPT"

// mergeLayeredPrompt layers base (the caller-supplied system prompt) above
// node (the graph's own node-level prompt), preserving both. A node prompt
// that's already an earlier layered result is wrapped again rather than
// deduplicated, matching the original system's behavior of re-injecting on
// every resolve.
func mergeLayeredPrompt(base, node string) string {
	base = strings.TrimSpace(base)
	node = strings.TrimSpace(node)

	switch {
	case base != "" && node != "":
		return base + "\n\n<" + nodePromptTag + ">\n" + node + "\n</" + nodePromptTag + ">"
	case base != "":
		return base
	default:
		return node
	}
}
