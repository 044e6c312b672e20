// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/poiesic/docgraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxPromptChars bounds the document text sent to the extraction service.
// Longer documents are clipped; entity density in technical docs is front-loaded
// enough that this loses little.
const maxPromptChars = 24000

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// entity is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type entity struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Confidence float64           `json:"confidence"`
	Properties map[string]string `json:"properties,omitempty"`
}

// relation mirrors the relation objects in the LLM response.
type relation struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Entities  []entity   `json:"entities"`
	Relations []relation `json:"relations"`
}

// newEntityExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &EntityExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities extracts typed entities from document text using an LLM.
// The call is a single attempt: retry policy belongs to the caller, which can
// classify failures through ai.IsRetryable.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) (*ai.Extraction, error) {
	text = clipText(text, maxPromptChars)

	systemPrompt := buildSystemPrompt()
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		classified := classifyServiceError(err)
		e.logger.Error("failed to generate content", "err", err, "retryable", ai.IsRetryable(classified))
		return nil, classified
	}

	if len(response.Choices) < 1 {
		e.logger.Debug("no choices returned from model")
		return nil, fmt.Errorf("%w: empty response", ai.ErrMalformedResponse)
	}

	choice := response.Choices[0]

	// Strip markdown code fences if present
	responseText := strings.TrimSpace(choice.Content)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	// Try to repair common JSON issues before parsing
	responseText = repairJSON(responseText)

	var result extraction
	if err := json.Unmarshal([]byte(responseText), &result); err != nil {
		e.logger.Warn("error parsing extractor response", "response", responseText, "err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}

	out := &ai.Extraction{
		Entities:  make([]ai.ExtractedEntity, 0, len(result.Entities)),
		Relations: make([]ai.ExtractedRelation, 0, len(result.Relations)),
		Raw:       choice.Content,
	}

	for _, ent := range result.Entities {
		out.Entities = append(out.Entities, ai.ExtractedEntity{
			Type:       strings.ReplaceAll(strings.ToLower(ent.Type), " ", "_"),
			Name:       ent.Name,
			Confidence: ent.Confidence,
			Properties: ent.Properties,
		})
	}
	for _, rel := range result.Relations {
		out.Relations = append(out.Relations, ai.ExtractedRelation{
			From:       rel.From,
			To:         rel.To,
			Type:       strings.ReplaceAll(strings.ToLower(rel.Type), " ", "_"),
			Confidence: rel.Confidence,
		})
	}

	if tokens, ok := choice.GenerationInfo["TotalTokens"].(int); ok {
		out.TokensUsed = tokens
	}

	e.logger.Debug("extracted entities",
		"entities", len(out.Entities),
		"relations", len(out.Relations))

	return out, nil
}

// transientMarkers are substrings that identify retryable service failures in
// error text from OpenAI-compatible servers and proxies.
var transientMarkers = []string{
	"rate limit",
	"too many requests",
	"status code: 429",
	"status code: 502",
	"status code: 503",
	"timeout",
	"connection reset",
	"connection refused",
	"temporarily unavailable",
}

// classifyServiceError wraps transport-level failures with ai.ErrTransient so
// the pipeline's retry wrapper can distinguish them from fatal errors.
func classifyServiceError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ai.ErrTransient, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ai.ErrTransient, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ai.ErrTransient, err)
		}
	}

	return err
}
