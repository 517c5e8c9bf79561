// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/metrics"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/validation"
)

// ErrMissingGeminiKey is returned when a recommendation is requested but no
// provider API key is configured. Handlers translate this into a
// NOT_CONFIGURED response rather than a transient failure.
var ErrMissingGeminiKey = errors.New("gemini: API key is not configured")

// maxErrorBodySize limits the maximum amount of response body read for error
// reporting. Prevents unbounded memory allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// GeminiClient talks to the Google generative language REST API. It asks the
// model for structured JSON via a response schema, so responses parse directly
// into models.Candidate without free-text scraping.
//
// Thread Safety: safe for concurrent use. Each request creates its own
// HTTP request.
type GeminiClient struct {
	apiKey      string
	model       string
	baseURL     string
	resultCount int
	client      *http.Client
}

// NewGeminiClient creates a Gemini client from configuration. A missing API
// key is not an error here; every call checks the key and returns
// ErrMissingGeminiKey so the condition surfaces at first use.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		resultCount: cfg.ResultCount,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// schemaProperty is one node of a generative response schema. Mirrors the
// subset of the generativelanguage Schema type the client needs.
type schemaProperty struct {
	Type        string                    `json:"type"`
	Description string                    `json:"description,omitempty"`
	Items       *schemaProperty           `json:"items,omitempty"`
	Properties  map[string]schemaProperty `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
}

// candidateProperties is the schema for a single recommended game. Shared by
// the batch recommendation schema and the single-game search schema.
func candidateProperties() map[string]schemaProperty {
	return map[string]schemaProperty{
		"id":                {Type: "STRING"},
		"steamAppId":        {Type: "STRING", Description: "The numeric Steam App ID."},
		"title":             {Type: "STRING"},
		"description":       {Type: "STRING"},
		"genres":            {Type: "ARRAY", Items: &schemaProperty{Type: "STRING"}},
		"tags":              {Type: "ARRAY", Items: &schemaProperty{Type: "STRING"}},
		"mainStoryTime":     {Type: "NUMBER"},
		"completionistTime": {Type: "NUMBER"},
		"suitabilityScore":  {Type: "NUMBER"},
		"reasonForPick":     {Type: "STRING"},
	}
}

// recommendationSchema constrains the model to the full RecommendationResponse
// shape: a ranked candidate list plus an overall accuracy assessment.
func recommendationSchema() schemaProperty {
	return schemaProperty{
		Type: "OBJECT",
		Properties: map[string]schemaProperty{
			"recommendations": {
				Type: "ARRAY",
				Items: &schemaProperty{
					Type:       "OBJECT",
					Properties: candidateProperties(),
					Required: []string{
						"id", "steamAppId", "title", "description",
						"mainStoryTime", "completionistTime",
						"suitabilityScore", "reasonForPick",
					},
				},
			},
			"accuracy": {
				Type: "OBJECT",
				Properties: map[string]schemaProperty{
					"percentage": {Type: "NUMBER"},
					"reasoning":  {Type: "STRING"},
				},
				Required: []string{"percentage", "reasoning"},
			},
		},
		Required: []string{"recommendations", "accuracy"},
	}
}

// generateRequest is the generativelanguage generateContent request body.
type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   schemaProperty `json:"responseSchema"`
}

// generateResponse is the subset of the generateContent response the client
// reads: the first candidate's first text part.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// candidatePayload is the model's structured output for the batch prompt.
type candidatePayload struct {
	Recommendations []models.Candidate  `json:"recommendations"`
	Accuracy        models.QuizAccuracy `json:"accuracy"`
}

// RequestCandidates asks the model for ranked game candidates matching the
// quiz answers. The returned slice preserves the model's ranking order and
// may be empty; an empty result is valid, not an error.
func (c *GeminiClient) RequestCandidates(ctx context.Context, answers models.QuizAnswers) ([]models.Candidate, models.QuizAccuracy, error) {
	if c.apiKey == "" {
		return nil, models.QuizAccuracy{}, ErrMissingGeminiKey
	}

	prompt := fmt.Sprintf(
		`Act as a world-class Steam curator. Suggest %d real video games.
Genres: %s, Playstyle: %s, Time: %s, Keywords: %s, Difficulty: %s.
Identify correct Steam App IDs. Estimate playtimes. Calculate suitabilityScore (0-100).`,
		c.resultCount,
		strings.Join(answers.PreferredGenres, ", "),
		answers.Playstyle,
		answers.TimeAvailability,
		answers.SpecificKeywords,
		answers.DifficultyPreference,
	)

	start := time.Now()

	var payload candidatePayload
	if err := c.generate(ctx, prompt, recommendationSchema(), &payload); err != nil {
		metrics.ObserveProviderRequest("gemini", "recommendations", "transport_error", start)
		return nil, models.QuizAccuracy{}, err
	}

	// The model is constrained by a response schema, but it still invents
	// values the schema cannot express: non-numeric app IDs, scores past
	// 100, completionist hours below the main story. Reject the whole
	// batch rather than feeding fabrications into the pipeline.
	for i := range payload.Recommendations {
		if verr := validation.ValidateStruct(&payload.Recommendations[i]); verr != nil {
			metrics.ObserveProviderRequest("gemini", "recommendations", "schema_error", start)
			return nil, models.QuizAccuracy{}, fmt.Errorf("gemini: candidate %d failed schema validation: %w", i, verr)
		}
	}
	if verr := validation.ValidateStruct(&payload.Accuracy); verr != nil {
		metrics.ObserveProviderRequest("gemini", "recommendations", "schema_error", start)
		return nil, models.QuizAccuracy{}, fmt.Errorf("gemini: accuracy failed schema validation: %w", verr)
	}

	metrics.ObserveProviderRequest("gemini", "recommendations", "success", start)

	logging.Ctx(ctx).Debug().
		Int("candidates", len(payload.Recommendations)).
		Int("accuracy_pct", payload.Accuracy.Percentage).
		Msg("Gemini returned candidate set")

	return payload.Recommendations, payload.Accuracy, nil
}

// SearchGame asks the model to identify one specific game by name and return
// its Steam app ID plus metadata.
func (c *GeminiClient) SearchGame(ctx context.Context, query string) (*models.Candidate, error) {
	if c.apiKey == "" {
		return nil, ErrMissingGeminiKey
	}

	prompt := fmt.Sprintf(`Search for %q. Provide its numeric steamAppId and full metadata.`, query)

	schema := schemaProperty{
		Type:       "OBJECT",
		Properties: candidateProperties(),
		Required: []string{
			"id", "steamAppId", "title", "description",
			"mainStoryTime", "completionistTime", "reasonForPick",
		},
	}

	start := time.Now()

	var candidate models.Candidate
	if err := c.generate(ctx, prompt, schema, &candidate); err != nil {
		metrics.ObserveProviderRequest("gemini", "search", "transport_error", start)
		return nil, err
	}

	if verr := validation.ValidateStruct(&candidate); verr != nil {
		metrics.ObserveProviderRequest("gemini", "search", "schema_error", start)
		return nil, fmt.Errorf("gemini: search result failed schema validation: %w", verr)
	}

	metrics.ObserveProviderRequest("gemini", "search", "success", start)
	return &candidate, nil
}

// generate performs one generateContent call and unmarshals the structured
// JSON text of the first candidate into result.
func (c *GeminiClient) generate(ctx context.Context, prompt string, schema schemaProperty, result interface{}) error {
	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gemini: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return fmt.Errorf("gemini: failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("gemini: response contained no candidates")
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), result); err != nil {
		return fmt.Errorf("gemini: failed to parse structured output: %w", err)
	}

	return nil
}
