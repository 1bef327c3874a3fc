package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesikahq/spitalverse/internal/insight"
	"github.com/mesikahq/spitalverse/internal/metrics"
	"github.com/mesikahq/spitalverse/internal/record"
)

var (
	ErrEmptySymptoms   = errors.New("symptom description is required")
	ErrInvalidSeverity = errors.New("severity must be mild, moderate or severe")
)

// Records is the part of the store the assistant flows read and write.
type Records interface {
	Snapshot() record.State
	Now() time.Time
	AddHealthSummary(ctx context.Context, h record.HealthSummary) (record.HealthSummary, error)
}

// Outcome describes one finished assistant flow.
type Outcome struct {
	Kind    string
	Status  Status
	Source  Source
	Applied bool
	At      time.Time
}

type OutcomeFunc func(ctx context.Context, o Outcome)

// GeneratedSummary is the result of GenerateSummary. Applied is false when
// a newer request was issued before this one finished; the summary was then
// not stored.
type GeneratedSummary struct {
	Summary record.HealthSummary `json:"summary"`
	Status  Status               `json:"status"`
	Source  Source               `json:"source"`
	Applied bool                 `json:"applied"`
}

type Service interface {
	GenerateSummary(ctx context.Context) (GeneratedSummary, error)
	HealthTips(ctx context.Context) TipsResult
	CheckSymptoms(ctx context.Context, symptoms, duration string, severity insight.Severity) (SymptomResult, error)
}

type service struct {
	records   Records
	gateway   Gateway
	generator *insight.Generator
	seq       *Sequencer
	logger    *zap.Logger
	outcomes  []OutcomeFunc
}

type Option func(*service)

func WithGenerator(g *insight.Generator) Option {
	return func(s *service) { s.generator = g }
}

func WithSequencer(seq *Sequencer) Option {
	return func(s *service) { s.seq = seq }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// WithOutcome registers a callback run after every flow.
func WithOutcome(fn OutcomeFunc) Option {
	return func(s *service) { s.outcomes = append(s.outcomes, fn) }
}

func NewService(records Records, gateway Gateway, opts ...Option) Service {
	s := &service{
		records:   records,
		gateway:   gateway,
		generator: insight.DefaultGenerator(),
		seq:       NewSequencer(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GenerateSummary(ctx context.Context) (GeneratedSummary, error) {
	token := s.seq.Next(KindSummary)
	st := s.records.Snapshot()
	now := s.records.Now()

	res := s.gateway.Summary(ctx, SummaryRequestFrom(st, now))

	out := GeneratedSummary{Status: res.Status, Source: SourceAI}
	if res.Status == StatusOK {
		out.Summary = record.HealthSummary{
			GeneratedAt:     now.UTC().Format(time.RFC3339),
			Summary:         res.Summary,
			Recommendations: res.Recommendations,
			RiskLevel:       res.RiskLevel,
		}
	} else {
		out.Summary = s.generator.Summarize(st, now)
		out.Source = SourceFallback
	}

	applied, err := s.seq.Apply(KindSummary, token, func() error {
		stored, err := s.records.AddHealthSummary(ctx, out.Summary)
		if err != nil {
			return err
		}
		out.Summary = stored
		return nil
	})
	if err != nil {
		return GeneratedSummary{}, err
	}
	out.Applied = applied
	if !applied {
		s.logger.Info("discarding stale summary", zap.Uint64("token", token))
	}

	s.report(ctx, Outcome{Kind: KindSummary, Status: out.Status, Source: out.Source, Applied: applied, At: now})
	return out, nil
}

func (s *service) HealthTips(ctx context.Context) TipsResult {
	st := s.records.Snapshot()
	now := s.records.Now()

	res := s.gateway.Tips(ctx, TipsRequestFrom(st, now))
	s.report(ctx, Outcome{Kind: KindTips, Status: res.Status, Source: sourceOf(res.Status), Applied: true, At: now})
	return res
}

func (s *service) CheckSymptoms(ctx context.Context, symptoms, duration string, severity insight.Severity) (SymptomResult, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return SymptomResult{}, ErrEmptySymptoms
	}
	if !severity.Valid() {
		return SymptomResult{}, ErrInvalidSeverity
	}

	st := s.records.Snapshot()
	now := s.records.Now()

	req := SymptomRequest{
		Symptoms: symptoms,
		Duration: strings.TrimSpace(duration),
		Severity: severity,
		Profile: SymptomProfile{
			Age:         ageOf(st.Profile, now),
			Gender:      string(st.Profile.Gender),
			Allergies:   st.Profile.Allergies,
			Medications: medicationInputs(st.ActiveMedications()),
		},
	}
	res := s.gateway.Symptoms(ctx, req)
	s.report(ctx, Outcome{Kind: KindSymptoms, Status: res.Status, Source: sourceOf(res.Status), Applied: true, At: now})
	return res, nil
}

func (s *service) report(ctx context.Context, o Outcome) {
	metrics.RecordAssistantOutcome(o.Kind, string(o.Status), string(o.Source))
	for _, fn := range s.outcomes {
		fn(ctx, o)
	}
}

func sourceOf(status Status) Source {
	if status == StatusOK {
		return SourceAI
	}
	return SourceFallback
}

func ageOf(p record.PatientProfile, now time.Time) *int {
	age, ok := insight.Age(p.DateOfBirth, now)
	if !ok {
		return nil
	}
	return &age
}

// SummaryRequestFrom builds the summary payload: active medications, every
// lab value dated by its report, and upcoming appointments soonest first.
func SummaryRequestFrom(st record.State, now time.Time) SummaryRequest {
	return SummaryRequest{
		Profile: SummaryProfile{
			Age:        ageOf(st.Profile, now),
			Gender:     string(st.Profile.Gender),
			BloodGroup: string(st.Profile.BloodGroup),
			Allergies:  st.Profile.Allergies,
		},
		Medications:  medicationInputs(st.ActiveMedications()),
		LabValues:    reportLabInputs(st.LabReports),
		Appointments: appointmentInputs(record.Upcoming(st.Appointments, now)),
	}
}

func TipsRequestFrom(st record.State, now time.Time) TipsRequest {
	labs := reportLabInputs(st.LabReports)
	return TipsRequest{
		Age:               ageOf(st.Profile, now),
		Gender:            string(st.Profile.Gender),
		BloodGroup:        string(st.Profile.BloodGroup),
		Allergies:         st.Profile.Allergies,
		Medications:       medicationInputs(st.ActiveMedications()),
		LabValues:         labs,
		HasAbnormalValues: hasAbnormal(labs),
	}
}

func reportLabInputs(reports []record.LabReport) []LabInput {
	var out []LabInput
	for _, r := range reports {
		values := labInputs(r.Values)
		for i := range values {
			values[i].Date = r.Date
		}
		out = append(out, values...)
	}
	if out == nil {
		out = []LabInput{}
	}
	return out
}
