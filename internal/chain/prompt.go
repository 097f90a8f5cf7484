package chain

import (
	"github.com/tmc/langchaingo/prompts"
)

const (
	ContextKey = "context"
	InputKey   = "input"
)

// SystemPrompt is rendered with the retrieved passages under {{.context}}.
const SystemPrompt = "You are a medical assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer the question. " +
	"If you don't know the answer, say that you don't know. " +
	"Use three sentences maximum and keep the answer concise." +
	"\n\n" +
	"{{.context}}"

// NewPrompt builds the fixed system + human chat template.
func NewPrompt() prompts.ChatPromptTemplate {
	return prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate(SystemPrompt, []string{ContextKey}),
		prompts.NewHumanMessagePromptTemplate("{{.input}}", []string{InputKey}),
	})
}
