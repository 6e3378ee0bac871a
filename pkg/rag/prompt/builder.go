package prompt

import (
	"strings"
)

// Builder assembles the system instruction for one chat turn: the fixed
// persona block followed by whatever context retrieval produced.
type Builder struct {
	basePrompt  string
	contextText string
}

func NewBuilder(basePrompt, contextText string) *Builder {
	return &Builder{
		basePrompt:  basePrompt,
		contextText: contextText,
	}
}

// Build concatenates base prompt and context. The context section is always
// appended, even when retrieval fell back to the no-grounding notice.
func (b *Builder) Build() string {
	var prompt strings.Builder

	prompt.WriteString(b.basePrompt)
	prompt.WriteString("\n\n## Relevant Context from Website:\n")
	prompt.WriteString(b.contextText)
	prompt.WriteString("\n")

	return prompt.String()
}

// Compose is the one-shot convenience form.
func Compose(basePrompt, contextText string) string {
	return NewBuilder(basePrompt, contextText).Build()
}
