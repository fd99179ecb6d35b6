package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"legalai-backend/models"
	"legalai-backend/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"
)

// Retrieval tuning. K is wider when a reranker is configured because the
// cross-encoder recovers precision from a broader candidate pool.
const (
	defaultRetrieveKReranked = 20
	defaultRetrieveKPlain    = 4
	defaultRerankTopN        = 5
)

const contextualizeInstruction = "Given a chat history and the latest user question which might reference context in the chat history, " +
	"formulate a standalone question which can be understood without the chat history. Do NOT answer the question, just reformulate it if needed."

const answerInstructionTemplate = `You are a Senior Legal Research Assistant. Your mandate is to analyze the provided legal documents and answer the user's question with **forensic precision**.

### CRITICAL INSTRUCTIONS:
1. **Zero External Knowledge:** You must answer strictly based *only* on the provided "Context" below. Do not use outside legal knowledge, general principles, or laws not explicitly present in the text.
2. **No Hallucination:** If the answer is not found in the context, you must state: *"The provided legal documents do not contain sufficient information to answer this specific query."* Do not attempt to guess or fabricate an answer.
3. **Evidence-Based:** Every claim you make must be supported by a specific reference from the text (e.g., "According to Case X...").
4. **Tone:** Maintain a formal, objective, and non-advisory tone (avoid saying "You should").

### REQUIRED OUTPUT FORMAT:

#### 1. Executive Summary
(A direct, 2-3 sentence answer to the core legal question.)

#### 2. Relevant Precedents & Analysis
(Detailed bullet points analyzing the retrieved text.)
* **[Case/Section Name]:** [Key holding or fact relevant to the question]
* **[Case/Section Name]:** [Key holding or fact relevant to the question]

#### 3. Conclusion
(A final summary statement on the legal position based solely on the provided context.)

### CONTEXT:
%s`

// PrecedentSearcher is the retrieval side of the pipeline.
type PrecedentSearcher interface {
	Search(ctx context.Context, embedding []float64, limit int) ([]models.Precedent, error)
}

// ChatPipeline holds the long-lived collaborators of the chat flow. It is
// immutable once constructed and shared read-only across requests.
type ChatPipeline struct {
	Embedder  Embedder
	Searcher  PrecedentSearcher
	Reranker  Reranker // nil disables the reranking stage
	Generator Generator
}

// PipelineBuilder constructs a ChatPipeline, typically connecting to the
// external services it needs.
type PipelineBuilder func(ctx context.Context) (*ChatPipeline, error)

// ChatService runs the retrieval-augmented chat flow: contextualize the
// query, retrieve precedent candidates, optionally rerank, then generate a
// grounded answer.
type ChatService struct {
	mu         sync.Mutex
	pipe       *ChatPipeline
	build      PipelineBuilder
	retrieveK  int
	rerankTopN int
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithPipelineBuilder sets the pipeline builder
func ChatWithPipelineBuilder(build PipelineBuilder) ChatServiceOption {
	return func(s *ChatService) {
		s.build = build
	}
}

// ChatWithRetrieveK overrides the retrieval candidate count.
func ChatWithRetrieveK(k int) ChatServiceOption {
	return func(s *ChatService) {
		s.retrieveK = k
	}
}

// ChatWithRerankTopN overrides how many candidates survive reranking.
func ChatWithRerankTopN(n int) ChatServiceOption {
	return func(s *ChatService) {
		s.rerankTopN = n
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rerankTopN == 0 {
		s.rerankTopN = defaultRerankTopN
	}
	return s
}

// NewChatServiceFromEnv creates the production chat service: pgvector
// retrieval, Gemini embedding and generation, and an optional hosted
// reranker, with RETRIEVE_K / RERANK_TOP_N tuning read from the
// environment.
func NewChatServiceFromEnv() *ChatService {
	opts := []ChatServiceOption{ChatWithPipelineBuilder(BuildPipelineFromEnv)}
	if k, err := strconv.Atoi(os.Getenv("RETRIEVE_K")); err == nil && k > 0 {
		opts = append(opts, ChatWithRetrieveK(k))
	}
	if n, err := strconv.Atoi(os.Getenv("RERANK_TOP_N")); err == nil && n > 0 {
		opts = append(opts, ChatWithRerankTopN(n))
	}
	return NewChatService(opts...)
}

// BuildPipelineFromEnv connects the real collaborators. It fails fast with
// a ConfigError naming every missing required variable before touching any
// external service.
func BuildPipelineFromEnv(ctx context.Context) (*ChatPipeline, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	var missing []string
	if databaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if geminiKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, upstream("vector store connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, upstream("vector store ping", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(geminiKey))
	if err != nil {
		pool.Close()
		return nil, upstream("generation client init", err)
	}

	pipe := &ChatPipeline{
		Embedder:  NewGeminiEmbedder(geminiKey),
		Searcher:  repository.NewPrecedentRepository(pool),
		Generator: NewGeminiGenerator(client),
	}

	if endpoint := os.Getenv("RERANK_ENDPOINT"); endpoint != "" {
		pipe.Reranker = NewHTTPReranker(endpoint, os.Getenv("RERANK_API_KEY"), os.Getenv("RERANK_MODEL"))
	}

	return pipe, nil
}

// pipeline returns the process-wide pipeline, constructing it on first
// use. Construction is serialized by the mutex so concurrent first
// requests block on a single attempt. A failed construction is not
// cached: the next request re-attempts, which tolerates transient startup
// conditions such as the vector store coming up late.
func (s *ChatService) pipeline(ctx context.Context) (*ChatPipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipe != nil {
		return s.pipe, nil
	}
	if s.build == nil {
		return nil, fmt.Errorf("chat pipeline builder not set")
	}

	pipe, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.pipe = pipe
	return pipe, nil
}

// Chat answers message grounded in retrieved precedent passages. The
// caller-supplied history orders prior turns oldest first; it is used for
// query contextualization and carried into generation, never persisted.
func (s *ChatService) Chat(
	ctx context.Context,
	message string,
	history []models.ChatMessage,
) (*models.ChatAnswer, error) {
	for _, msg := range history {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
		}
	}

	pipe, err := s.pipeline(ctx)
	if err != nil {
		return nil, err
	}

	// A follow-up question referencing earlier turns must become
	// self-contained before embedding; with no history the raw message is
	// already the retrieval query.
	query := message
	if len(history) > 0 {
		rewritten, err := pipe.Generator.Generate(ctx, contextualizeInstruction, history, message)
		if err != nil {
			return nil, upstream("contextualize", err)
		}
		query = strings.TrimSpace(rewritten)
	}

	embedding, err := pipe.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, upstream("embed", err)
	}

	candidates, err := pipe.Searcher.Search(ctx, embedding, s.retrieveLimit(pipe))
	if err != nil {
		return nil, upstream("retrieve", err)
	}

	if pipe.Reranker != nil {
		candidates, err = pipe.Reranker.Rerank(ctx, query, candidates)
		if err != nil {
			return nil, upstream("rerank", err)
		}
		if len(candidates) > s.rerankTopN {
			candidates = candidates[:s.rerankTopN]
		}
	}

	var contextBlock strings.Builder
	for _, c := range candidates {
		contextBlock.WriteString(c.Content)
		contextBlock.WriteString("\n\n")
	}

	// Generation sees the original message, not the rewritten query: the
	// rewrite exists only to make retrieval self-contained.
	answer, err := pipe.Generator.Generate(
		ctx,
		fmt.Sprintf(answerInstructionTemplate, contextBlock.String()),
		history,
		message,
	)
	if err != nil {
		return nil, upstream("generate", err)
	}

	sources := make([]models.ChatSource, 0, len(candidates))
	for _, c := range candidates {
		sources = append(sources, models.ChatSource{Content: c.Content})
	}

	log.Printf("chat answered with %d sources for query: %s", len(sources), truncate(query, 50))

	return &models.ChatAnswer{
		Answer:  answer,
		Sources: sources,
	}, nil
}

func (s *ChatService) retrieveLimit(pipe *ChatPipeline) int {
	if s.retrieveK > 0 {
		return s.retrieveK
	}
	if pipe.Reranker != nil {
		return defaultRetrieveKReranked
	}
	return defaultRetrieveKPlain
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
