package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhanvu/docchat/internal/llm"
)

// Composer turns retrieved passages into a grounded answer. It builds a
// source-tagged context block, sends it with the question to the
// generative provider, and returns the answer together with the list of
// contributing documents.
type Composer struct {
	provider llm.Provider
	model    string
}

// NewComposer creates a Composer backed by the given provider.
func NewComposer(provider llm.Provider, model string) *Composer {
	return &Composer{provider: provider, model: model}
}

// Compose generates the answer for query from the retrieval result. An
// empty result short-circuits to a fixed "no relevant information" answer
// without calling the model.
func (c *Composer) Compose(ctx context.Context, query string, retrieval Result) (Answer, error) {
	if retrieval.Empty() {
		return Answer{Response: noInformationAnswer}, nil
	}

	prompt := buildAnswerPrompt(query, retrieval)

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   2048,
		Temperature: 0.3,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	return Answer{
		Response: strings.TrimSpace(resp.Content),
		Sources:  retrieval.Sources,
	}, nil
}

// buildAnswerPrompt concatenates the retrieved passages, each tagged with
// its source file, in the order the retriever ranked them.
func buildAnswerPrompt(query string, retrieval Result) string {
	var sb strings.Builder

	sb.WriteString("Context passages:\n\n")
	for _, m := range retrieval.Matches {
		sb.WriteString(fmt.Sprintf("[Source: %s]\n", m.Source))
		sb.WriteString(m.Text)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)

	return sb.String()
}
