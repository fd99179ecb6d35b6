package service

import (
	"context"
	"errors"
	"testing"

	"legalai-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	gotText string
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	f.gotText = text
	return []float64{0.1, 0.2, 0.3}, nil
}

type fakeSearcher struct {
	gotLimit int
	results  []models.Precedent
}

func (f *fakeSearcher) Search(ctx context.Context, embedding []float64, limit int) ([]models.Precedent, error) {
	f.gotLimit = limit
	return f.results, nil
}

type fakeReranker struct {
	results []models.Precedent
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, candidates []models.Precedent) ([]models.Precedent, error) {
	if f.results != nil {
		return f.results, nil
	}
	return candidates, nil
}

type genCall struct {
	system  string
	message string
	history []models.ChatMessage
}

type fakeGenerator struct {
	calls   []genCall
	answers []string
}

func (f *fakeGenerator) Generate(
	ctx context.Context,
	systemInstruction string,
	history []models.ChatMessage,
	message string,
) (string, error) {
	f.calls = append(f.calls, genCall{system: systemInstruction, message: message, history: history})
	if len(f.answers) >= len(f.calls) {
		return f.answers[len(f.calls)-1], nil
	}
	return "generated answer", nil
}

func precedents(contents ...string) []models.Precedent {
	out := make([]models.Precedent, 0, len(contents))
	for i, c := range contents {
		out = append(out, models.Precedent{ChunkIndex: i, Content: c})
	}
	return out
}

func fixedPipeline(pipe *ChatPipeline) ChatServiceOption {
	return ChatWithPipelineBuilder(func(ctx context.Context) (*ChatPipeline, error) {
		return pipe, nil
	})
}

func TestChatRejectsUnknownRole(t *testing.T) {
	built := false
	svc := NewChatService(ChatWithPipelineBuilder(func(ctx context.Context) (*ChatPipeline, error) {
		built = true
		return nil, errors.New("should not be reached")
	}))

	history := []models.ChatMessage{{Role: "system", Content: "you are helpful"}}
	_, err := svc.Chat(context.Background(), "What did the court hold?", history)

	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Contains(t, err.Error(), "system")
	assert.False(t, built, "pipeline must not be built for an invalid request")
}

func TestChatWithoutHistorySkipsContextualization(t *testing.T) {
	gen := &fakeGenerator{answers: []string{"the answer"}}
	searcher := &fakeSearcher{results: precedents("chunk one", "chunk two")}
	embedder := &fakeEmbedder{}

	svc := NewChatService(fixedPipeline(&ChatPipeline{
		Embedder:  embedder,
		Searcher:  searcher,
		Generator: gen,
	}))

	answer, err := svc.Chat(context.Background(), "What is the standard for negligence?", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 1, "only the answer generation call")
	assert.Equal(t, "What is the standard for negligence?", embedder.gotText)
	assert.Equal(t, "the answer", answer.Answer)
}

func TestChatWithHistoryContextualizesQuery(t *testing.T) {
	gen := &fakeGenerator{answers: []string{"What is the negligence standard in maritime law?", "final answer"}}
	embedder := &fakeEmbedder{}

	svc := NewChatService(fixedPipeline(&ChatPipeline{
		Embedder:  embedder,
		Searcher:  &fakeSearcher{results: precedents("chunk")},
		Generator: gen,
	}))

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "Tell me about maritime law."},
		{Role: models.RoleAssistant, Content: "Maritime law governs..."},
	}
	answer, err := svc.Chat(context.Background(), "And what about negligence?", history)
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, contextualizeInstruction, gen.calls[0].system)
	assert.Equal(t, "And what about negligence?", gen.calls[0].message)

	// Retrieval uses the rewritten query; generation keeps the original message
	assert.Equal(t, "What is the negligence standard in maritime law?", embedder.gotText)
	assert.Equal(t, "And what about negligence?", gen.calls[1].message)
	assert.Equal(t, history, gen.calls[1].history)

	assert.Equal(t, "final answer", answer.Answer)
}

func TestChatRetrievalLimitWithoutReranker(t *testing.T) {
	searcher := &fakeSearcher{results: precedents("a")}
	svc := NewChatService(fixedPipeline(&ChatPipeline{
		Embedder:  &fakeEmbedder{},
		Searcher:  searcher,
		Generator: &fakeGenerator{},
	}))

	_, err := svc.Chat(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultRetrieveKPlain, searcher.gotLimit)
}

func TestChatRerankTruncatesToTopN(t *testing.T) {
	contents := make([]string, 8)
	for i := range contents {
		contents[i] = "chunk"
	}
	searcher := &fakeSearcher{results: precedents(contents...)}

	svc := NewChatService(
		fixedPipeline(&ChatPipeline{
			Embedder:  &fakeEmbedder{},
			Searcher:  searcher,
			Reranker:  &fakeReranker{},
			Generator: &fakeGenerator{},
		}),
		ChatWithRerankTopN(3),
	)

	answer, err := svc.Chat(context.Background(), "question", nil)
	require.NoError(t, err)

	assert.Equal(t, defaultRetrieveKReranked, searcher.gotLimit)
	assert.Len(t, answer.Sources, 3)
}

func TestChatSourcesCarryContentOnly(t *testing.T) {
	svc := NewChatService(fixedPipeline(&ChatPipeline{
		Embedder:  &fakeEmbedder{},
		Searcher:  &fakeSearcher{results: precedents("first passage", "second passage")},
		Generator: &fakeGenerator{},
	}))

	answer, err := svc.Chat(context.Background(), "question", nil)
	require.NoError(t, err)

	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "first passage", answer.Sources[0].Content)
	assert.Equal(t, "second passage", answer.Sources[1].Content)
}

func TestChatContextBlockContainsRetrievedText(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewChatService(fixedPipeline(&ChatPipeline{
		Embedder:  &fakeEmbedder{},
		Searcher:  &fakeSearcher{results: precedents("Kazarian v. USCIS holding text")},
		Generator: gen,
	}))

	_, err := svc.Chat(context.Background(), "question", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].system, "Kazarian v. USCIS holding text")
	assert.Contains(t, gen.calls[0].system, "Senior Legal Research Assistant")
}

func TestChatFailedPipelineBuildRetried(t *testing.T) {
	attempts := 0
	svc := NewChatService(ChatWithPipelineBuilder(func(ctx context.Context) (*ChatPipeline, error) {
		attempts++
		if attempts < 2 {
			return nil, &ConfigError{Missing: []string{"GEMINI_API_KEY"}}
		}
		return &ChatPipeline{
			Embedder:  &fakeEmbedder{},
			Searcher:  &fakeSearcher{results: precedents("chunk")},
			Generator: &fakeGenerator{},
		}, nil
	}))

	_, err := svc.Chat(context.Background(), "question", nil)
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Error(), "GEMINI_API_KEY")

	_, err = svc.Chat(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestChatPipelineBuiltOnce(t *testing.T) {
	attempts := 0
	svc := NewChatService(ChatWithPipelineBuilder(func(ctx context.Context) (*ChatPipeline, error) {
		attempts++
		return &ChatPipeline{
			Embedder:  &fakeEmbedder{},
			Searcher:  &fakeSearcher{},
			Generator: &fakeGenerator{},
		}, nil
	}))

	for i := 0; i < 3; i++ {
		_, err := svc.Chat(context.Background(), "question", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, attempts)
}

func TestBuildPipelineFromEnvMissingConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := BuildPipelineFromEnv(context.Background())
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.ElementsMatch(t, []string{"DATABASE_URL", "GEMINI_API_KEY"}, configErr.Missing)
}
