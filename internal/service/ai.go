package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/macrolog/backend/internal/config"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/numutil"
	"github.com/macrolog/backend/pkg/supabase"
)

// AI failures the handlers translate into typed API errors.
var (
	// ErrAIUnavailable means no API key is configured. Analysis
	// endpoints respond 503 instead of failing at startup so the rest
	// of the product keeps working without a key.
	ErrAIUnavailable = errors.New("ai analysis unavailable")

	// ErrAIBadResponse means the model's reply could not be turned
	// into a usable analysis.
	ErrAIBadResponse = errors.New("unusable model response")
)

// The model must answer with bare JSON matching MealAnalysis. Prompts
// ship in French like the rest of the product copy.
const (
	analyzeTextSystemPrompt = `Tu es un assistant nutritionnel. L'utilisateur décrit un repas en langage naturel.
Réponds UNIQUEMENT avec un objet JSON, sans texte autour, au format :
{"description": "résumé court du repas", "protein": <grammes de protéines, nombre>, "calories": <kcal, nombre ou null si incertain>, "confidence": <nombre entre 0 et 1>}`

	analyzePhotoSystemPrompt = `Tu es un assistant nutritionnel. Analyse la photo de repas fournie.
Réponds UNIQUEMENT avec un objet JSON, sans texte autour, au format :
{"description": "résumé court du repas", "protein": <grammes de protéines, nombre>, "calories": <kcal, nombre ou null si incertain>, "confidence": <nombre entre 0 et 1>}`

	analyzePhotoUserText = "Analyse ce repas."
)

type chatMessage struct {
	Role string `json:"role"`
	// Content is a string for text messages and a []contentPart for
	// vision messages.
	Content any `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type aiService struct {
	cfg        config.AIConfig
	httpClient *http.Client
	storage    *supabase.Client
	bucket     string
	validate   *validator.Validate
}

// NewAIService creates a new AI analysis service backed by an
// OpenAI-compatible chat-completions API.
func NewAIService(cfg config.AIConfig, storage *supabase.Client, bucket string) AIService {
	return &aiService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		storage:    storage,
		bucket:     bucket,
		validate:   validator.New(),
	}
}

func (s *aiService) AnalyzeText(ctx context.Context, text string) (*models.MealAnalysis, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrAIUnavailable
	}

	content, err := s.chat(ctx, []chatMessage{
		{Role: "system", Content: analyzeTextSystemPrompt},
		{Role: "user", Content: text},
	})
	if err != nil {
		return nil, err
	}
	return s.parseAnalysis(content)
}

func (s *aiService) AnalyzePhoto(ctx context.Context, userID string, photo []byte, contentType string) (*models.PhotoAnalysisResult, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrAIUnavailable
	}

	// The photo is stored first so the meal keeps a URL even if the
	// user discards the analysis.
	path := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), extensionFor(contentType))
	photoURL, err := s.storage.UploadObject(s.bucket, path, photo, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(photo))
	content, err := s.chat(ctx, []chatMessage{
		{Role: "system", Content: analyzePhotoSystemPrompt},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: analyzePhotoUserText},
			{Type: "image_url", ImageURL: &imageURLPart{URL: dataURL}},
		}},
	})
	if err != nil {
		return nil, err
	}

	analysis, err := s.parseAnalysis(content)
	if err != nil {
		return nil, err
	}

	return &models.PhotoAnalysisResult{
		PhotoURL: photoURL,
		Analysis: *analysis,
	}, nil
}

func (s *aiService) chat(ctx context.Context, messages []chatMessage) (string, error) {
	payload := chatRequest{
		Model:     s.cfg.Model,
		Messages:  messages,
		MaxTokens: 500,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrAIBadResponse)
	}
	return chatResp.Choices[0].Message.Content, nil
}

// parseAnalysis turns the model's reply into a validated MealAnalysis.
// Models wrap JSON in prose or fences often enough that the object is
// cut out of the text first, and numbers arrive as strings often enough
// that every numeric field is coerced rather than decoded strictly.
func (s *aiService) parseAnalysis(content string) (*models.MealAnalysis, error) {
	payload := extractJSON(content)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrAIBadResponse)
	}

	var raw struct {
		Description string `json:"description"`
		Protein     any    `json:"protein"`
		Calories    any    `json:"calories"`
		Confidence  any    `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIBadResponse, err)
	}

	analysis := &models.MealAnalysis{
		Description: strings.TrimSpace(raw.Description),
		Protein:     numutil.SafeNumber(raw.Protein, 0),
		Confidence:  numutil.SafeNumber(raw.Confidence, 0),
	}
	if raw.Calories != nil {
		calories := numutil.SafeNumber(raw.Calories, -1)
		if calories >= 0 {
			analysis.Calories = &calories
		}
	}

	if err := s.validate.Struct(analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIBadResponse, err)
	}
	return analysis, nil
}

// extractJSON cuts the first {...} block out of a reply, tolerating
// markdown fences around it.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimSpace(strings.TrimPrefix(content, "```json"))
		content = strings.TrimSpace(strings.TrimPrefix(content, "```"))
		content = strings.TrimSpace(strings.TrimSuffix(content, "```"))
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
