package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/store"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm"
)

// NoInformationAnswer is returned when retrieval finds nothing. The
// chat provider is not called in that case.
const NoInformationAnswer = "No relevant information was found in the knowledge base."

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	// SystemPrompt is the prompt template. The {{context}} placeholder
	// is replaced with the retrieved chunks.
	SystemPrompt string
}

// Generator produces an answer from retrieved chunks.
type Generator struct {
	chatProvider llm.ChatProvider
	config       *GeneratorConfig
}

// NewGenerator creates a generator.
func NewGenerator(chatProvider llm.ChatProvider, config *GeneratorConfig) *Generator {
	return &Generator{
		chatProvider: chatProvider,
		config:       config,
	}
}

// GenerateAnswer builds a context from the retrieved chunks and asks
// the chat provider. Zero chunks short-circuits to the fixed answer.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, results []*store.SearchResult) (string, error) {
	if len(results) == 0 {
		return NoInformationAnswer, nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("context cancelled before generation: %w", ctx.Err())
	}

	var contextBuilder strings.Builder
	for i, result := range results {
		fmt.Fprintf(&contextBuilder, "[%d] From %s (chunk %d):\n%s\n\n",
			i+1, result.DocumentName, result.Index, result.Content)
	}

	systemPrompt := strings.ReplaceAll(g.config.SystemPrompt, "{{context}}", contextBuilder.String())

	logger.Info("Calling LLM to generate answer...")
	answer, err := g.chatProvider.Generate(ctx, question, systemPrompt)
	if err != nil {
		logger.Errorf("LLM generation failed: %v", err)
		return "", fmt.Errorf("%w: %v", errs.ErrGeneration, err)
	}

	logger.Infof("LLM answer generated (length: %d)", len(answer))
	return answer, nil
}
