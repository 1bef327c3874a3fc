// Package assistant answers summary, tips and symptom requests with a
// language model and falls back to the local rule engines when the model
// is not configured or fails.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesikahq/spitalverse/internal/insight"
	"github.com/mesikahq/spitalverse/internal/llm"
	"github.com/mesikahq/spitalverse/internal/metrics"
	"github.com/mesikahq/spitalverse/internal/record"
)

var ErrInvalidResponse = errors.New("language model response failed validation")

const (
	summaryUnavailableText = "AI summary is not available. Please configure your API key to enable this feature."
	summaryErrorText       = "Unable to generate AI summary at this time. Please try again later."
	summaryPlaceholderTip  = "Continue monitoring your health metrics regularly."
)

// Completer is the language model used by the gateway.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, req llm.ChatRequest) (string, error)
}

// Gateway serves the three stateless assistant endpoints. Every result
// carries a Status; tips and symptom results are always usable.
type Gateway interface {
	Summary(ctx context.Context, req SummaryRequest) SummaryResult
	Tips(ctx context.Context, req TipsRequest) TipsResult
	Symptoms(ctx context.Context, req SymptomRequest) SymptomResult
}

type gateway struct {
	llm    Completer
	logger *zap.Logger
}

func NewGateway(client Completer, logger *zap.Logger) Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gateway{
		llm:    client,
		logger: logger,
	}
}

func (g *gateway) Summary(ctx context.Context, req SummaryRequest) SummaryResult {
	var out SummaryResult
	status := g.complete(ctx, KindSummary, llm.ChatRequest{
		System:      summarySystemPrompt,
		User:        summaryPrompt(req),
		Temperature: 0.7,
		MaxTokens:   1500,
	}, &out, validateSummary)

	switch status {
	case StatusUnavailable:
		return placeholderSummary(StatusUnavailable, summaryUnavailableText)
	case StatusError:
		return placeholderSummary(StatusError, summaryErrorText)
	}
	out.Status = StatusOK
	return out
}

func (g *gateway) Tips(ctx context.Context, req TipsRequest) TipsResult {
	var out TipsResult
	status := g.complete(ctx, KindTips, llm.ChatRequest{
		System:      tipsSystemPrompt,
		User:        tipsPrompt(req),
		Temperature: 0.8,
		MaxTokens:   1500,
	}, &out, validateTips)

	if status != StatusOK {
		return TipsResult{
			Status: status,
			TipsBundle: insight.Tips(insight.TipsInput{
				ActiveMedications: len(req.Medications),
				HasAbnormalValues: req.HasAbnormalValues,
			}),
		}
	}
	out.Status = StatusOK
	return out
}

func (g *gateway) Symptoms(ctx context.Context, req SymptomRequest) SymptomResult {
	var out SymptomResult
	status := g.complete(ctx, KindSymptoms, llm.ChatRequest{
		System:      symptomSystemPrompt,
		User:        symptomPrompt(req),
		Temperature: 0.7,
		MaxTokens:   1200,
	}, &out, validateSymptoms)

	if status != StatusOK {
		return SymptomResult{
			Status:          status,
			SymptomGuidance: insight.Triage(req.Duration, req.Severity),
		}
	}
	out.Status = StatusOK
	return out
}

// complete runs one chat completion, decodes it into out and validates it.
// A missing key is StatusUnavailable; any other failure is StatusError.
func (g *gateway) complete(ctx context.Context, kind string, req llm.ChatRequest, out interface{}, validate func(interface{}) error) Status {
	if g.llm == nil || !g.llm.Configured() {
		return StatusUnavailable
	}

	start := time.Now()
	content, err := g.llm.Complete(ctx, req)
	if err == nil {
		err = json.Unmarshal([]byte(content), out)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	if err == nil {
		err = validate(out)
	}

	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return StatusUnavailable
	case err != nil:
		metrics.RecordLLMRequest(kind, string(StatusError), time.Since(start))
		g.logger.Warn("language model request failed, using fallback",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return StatusError
	}
	metrics.RecordLLMRequest(kind, string(StatusOK), time.Since(start))
	return StatusOK
}

func placeholderSummary(status Status, text string) SummaryResult {
	return SummaryResult{
		Status:          status,
		Summary:         text,
		Recommendations: []string{summaryPlaceholderTip},
		RiskLevel:       record.RiskLow,
	}
}

func validateSummary(v interface{}) error {
	s := v.(*SummaryResult)
	if strings.TrimSpace(s.Summary) == "" {
		return fmt.Errorf("%w: empty summary", ErrInvalidResponse)
	}
	if !s.RiskLevel.Valid() {
		return fmt.Errorf("%w: risk level %q", ErrInvalidResponse, s.RiskLevel)
	}
	if s.Recommendations == nil {
		s.Recommendations = []string{}
	}
	return nil
}

func validateTips(v interface{}) error {
	t := v.(*TipsResult)
	if strings.TrimSpace(t.DailyTip.Title) == "" {
		return fmt.Errorf("%w: missing daily tip", ErrInvalidResponse)
	}
	if len(t.Tips) == 0 {
		return fmt.Errorf("%w: no tips", ErrInvalidResponse)
	}
	if t.FocusAreas == nil {
		t.FocusAreas = []string{}
	}
	return nil
}

func validateSymptoms(v interface{}) error {
	s := v.(*SymptomResult)
	if strings.TrimSpace(s.Acknowledgment) == "" {
		return fmt.Errorf("%w: missing acknowledgment", ErrInvalidResponse)
	}
	if !s.CareLevel.Valid() {
		return fmt.Errorf("%w: care level %q", ErrInvalidResponse, s.CareLevel)
	}
	if s.Disclaimer == "" {
		s.Disclaimer = insight.Disclaimer
	}
	return nil
}
