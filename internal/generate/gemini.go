// Package generate breaks a task title into actionable subtasks using the
// Gemini generateContent API.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Defaults for Config fields left empty.
const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	minCount    = 1
	maxCount    = 10
	temperature = 0.7
)

// Config configures a Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini is a types.SubtaskGenerator backed by the Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewGemini creates a client. A missing API key is reported on the first
// GenerateSubtasks call, not here, so the CLI can start without one.
func NewGemini(cfg Config) *Gemini {
	g := &Gemini{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.baseURL == "" {
		g.baseURL = DefaultBaseURL
	}
	if g.http == nil {
		g.http = &http.Client{Timeout: 60 * time.Second}
	}
	return g
}

// ClampCount limits a requested subtask count to [1, 10].
func ClampCount(n int) int {
	return min(max(n, minCount), maxCount)
}

// Prompt returns the instruction sent for title and count.
func Prompt(title string, count int) string {
	return fmt.Sprintf("Break down the following complex task into exactly %d smaller, actionable subtasks. "+
		"Ensure the subtasks are clear, concise, and logically ordered. Task: %q", count, title)
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	ResponseSchema   schema  `json:"responseSchema"`
	Temperature      float64 `json:"temperature"`
}

type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Items       *schema           `json:"items,omitempty"`
	MaxItems    string            `json:"maxItems,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type subtaskList struct {
	Subtasks []string `json:"subtasks"`
}

func responseSchema(count int) schema {
	return schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"subtasks": {
				Type:        "ARRAY",
				Description: "A list of actionable subtasks.",
				Items: &schema{
					Type:        "STRING",
					Description: "A single, actionable subtask.",
				},
				MaxItems: fmt.Sprint(count),
			},
		},
		Required: []string{"subtasks"},
	}
}

// GenerateSubtasks returns at most count trimmed, non-empty subtask strings
// for title. count is clamped to [1, 10].
func (g *Gemini) GenerateSubtasks(ctx context.Context, title string, count int) ([]string, error) {
	if g.apiKey == "" {
		return nil, types.ErrGeneratorNotConfigured
	}
	count = ClampCount(count)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: Prompt(title, count)}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(count),
			Temperature:      temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", types.ErrGeneratorFailed, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrGeneratorFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrGeneratorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", types.ErrGeneratorFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", types.ErrGeneratorFailed, err)
	}

	text := responseText(out)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", types.ErrGeneratorFailed)
	}

	var list subtaskList
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("%w: unexpected response: %v", types.ErrGeneratorFailed, err)
	}

	steps := make([]string, 0, count)
	for _, s := range list.Subtasks {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		steps = append(steps, s)
		if len(steps) == count {
			break
		}
	}
	return steps, nil
}

func responseText(r generateResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
