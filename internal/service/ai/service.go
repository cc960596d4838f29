package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/nennneko5787/novelist-ai/internal/config"
	"github.com/nennneko5787/novelist-ai/internal/model/novel"
)

// Service generates novel pages through a prompt-template + chat-model
// chain. It satisfies the engine's StreamingGenerator interface.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the generation chain from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile novelist chain: %w", err)
	}

	return &Service{cfg: cfg, chain: runnable}, nil
}

// StreamingEnabled reports whether streamed generation is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Generate produces one page for the replayed history and prompt.
func (s *Service) Generate(ctx context.Context, history []novel.Turn, prompt string) (string, error) {
	genID := uuid.NewString()

	response, err := s.chain.Invoke(ctx, chainInput(history, prompt))
	if err != nil {
		return "", fmt.Errorf("failed to run novelist chain: %w", err)
	}

	log.Printf("[ai] generation %s produced %d bytes over %d history turns", genID, len(response.Content), len(history))
	return response.Content, nil
}

// GenerateStream produces one page like Generate but forwards content
// fragments to onDelta as the model emits them.
func (s *Service) GenerateStream(ctx context.Context, history []novel.Turn, prompt string, onDelta func(string)) (string, error) {
	genID := uuid.NewString()

	stream, err := s.chain.Stream(ctx, chainInput(history, prompt))
	if err != nil {
		return "", fmt.Errorf("failed to stream novelist chain: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", fmt.Errorf("failed to receive chain output: %w", recvErr)
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if onDelta != nil && chunk.Content != "" {
			onDelta(chunk.Content)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", fmt.Errorf("failed to assemble streamed page: %w", err)
	}

	log.Printf("[ai] generation %s streamed %d bytes in %d chunks", genID, len(response.Content), len(chunks))
	return response.Content, nil
}

func chainInput(history []novel.Turn, prompt string) map[string]any {
	return map[string]any{
		"system":  systemInstruction,
		"history": toSchemaMessages(history),
		"query":   prompt,
	}
}
