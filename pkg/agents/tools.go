package agents

// ToolKind names the executor a plan step is bound to.
type ToolKind string

const (
	// ToolResearcher retrieves documents from the vector store.
	ToolResearcher ToolKind = "researcher"
	// ToolWebScout looks up current case law on the web. Not wired to an
	// executor yet; steps carrying it fall through to the researcher.
	ToolWebScout ToolKind = "web_scout"
	// ToolAnalyst cross-references already-retrieved documents.
	ToolAnalyst ToolKind = "analyst"
)

// ParseToolKind maps free-form model output onto the closed enum. Anything
// unrecognized degrades to the researcher, which can always do something
// useful with a query.
func ParseToolKind(s string) ToolKind {
	switch ToolKind(s) {
	case ToolResearcher, ToolWebScout, ToolAnalyst:
		return ToolKind(s)
	default:
		return ToolResearcher
	}
}
