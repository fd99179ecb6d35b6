package service

import (
	"context"
	"fmt"
	"strings"

	"legalai-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const generationModel = "gemini-3-pro-preview"

// Generator produces model text from a system instruction, conversation
// history, and the latest user message.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, history []models.ChatMessage, message string) (string, error)
}

// GeminiGenerator generates answers with the Gemini API through the genai
// SDK. One call per pipeline stage; no automatic retry on the request path.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator wraps an initialized genai client.
func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{
		client:      client,
		model:       generationModel,
		temperature: 0.1,
	}
}

// Generate sends the conversation to the model and returns the concatenated
// text of the first-candidate parts.
func (g *GeminiGenerator) Generate(
	ctx context.Context,
	systemInstruction string,
	history []models.ChatMessage,
	message string,
) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	session := model.StartChat()
	for _, msg := range history {
		role := "model"
		if msg.Role == models.RoleUser {
			role = "user"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("model returned empty content")
	}

	return text.String(), nil
}
