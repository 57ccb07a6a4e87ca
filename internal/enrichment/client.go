package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/cds-engine/pkg/circuitbreaker"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

// Config configures the external text-generation client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint. One attempt
// per request, no retries; the caller treats any error as "enrichment
// unavailable".
type Client struct {
	cfg     Config
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New returns a Client, or Noop when no API key is configured.
func New(cfg Config, logger zerolog.Logger, m *metrics.Metrics) Enricher {
	if cfg.APIKey == "" {
		logger.Info().Msg("enrichment disabled: no API key configured")
		return Noop{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "enrichment",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		logger:  logger,
		metrics: m,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a clinical decision support assistant for a " +
	"manual therapy practice. Respond with strict JSON only. Your output is " +
	"advisory and supplements, never replaces, rule-based screening."

func (c *Client) SuggestDiagnoses(ctx context.Context, cc CaseContext) ([]Suggestion, error) {
	prompt := fmt.Sprintf(
		"Suggest up to 5 ICD-10 diagnoses as JSON {\"suggestions\":[{\"code\",\"confidence\",\"reasoning\"}]} "+
			"with confidence 0-100. Chief complaint: %q. Conditions: %s. Age: %d.",
		cc.ChiefComplaint, strings.Join(cc.Conditions, ", "), cc.Age,
	)
	var out struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.complete(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func (c *Client) ExtraContraindications(ctx context.Context, cc CaseContext) ([]Caution, error) {
	prompt := fmt.Sprintf(
		"List additional cautions for performing %q as JSON {\"cautions\":[{\"title\",\"detail\"}]}. "+
			"Conditions: %s. Medications: %s. Age: %d.",
		cc.ProcedureName, strings.Join(cc.Conditions, ", "), strings.Join(cc.Medications, ", "), cc.Age,
	)
	var out struct {
		Cautions []Caution `json:"cautions"`
	}
	if err := c.complete(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out.Cautions, nil
}

func (c *Client) RefineTreatment(ctx context.Context, cc CaseContext, plan string) (string, error) {
	prompt := fmt.Sprintf(
		"Refine this treatment recommendation for a %d year old with conditions [%s], keeping every "+
			"safety caveat intact. Return JSON {\"text\": \"...\"}. Plan: %q",
		cc.Age, strings.Join(cc.Conditions, ", "), plan,
	)
	var out struct {
		Text string `json:"text"`
	}
	if err := c.complete(ctx, prompt, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return plan, nil
	}
	return out.Text, nil
}

func (c *Client) RefineNarrative(ctx context.Context, cc CaseContext, narrative string) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite this prognosis explanation in plain patient-facing language without changing any "+
			"numbers. Return JSON {\"text\": \"...\"}. Text: %q",
		narrative,
	)
	var out struct {
		Text string `json:"text"`
	}
	if err := c.complete(ctx, prompt, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return narrative, nil
	}
	return out.Text, nil
}

func (c *Client) complete(ctx context.Context, prompt string, out interface{}) error {
	start := time.Now()
	c.metrics.EnrichmentRequests.Inc()

	err := c.cb.Execute(func() error {
		body, err := json.Marshal(chatRequest{
			Model: c.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature:    0.2,
			ResponseFormat: &respFormat{Type: "json_object"},
		})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("enrichment service returned status %d", resp.StatusCode)
		}

		var cr chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return err
		}
		if len(cr.Choices) == 0 {
			return fmt.Errorf("enrichment service returned no choices")
		}
		return json.Unmarshal([]byte(cr.Choices[0].Message.Content), out)
	})

	c.metrics.EnrichmentLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.EnrichmentFailures.Inc()
		c.logger.Debug().Err(err).Msg("enrichment call failed, continuing with rule-based output")
	}
	return err
}
