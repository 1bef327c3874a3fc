package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/mesikahq/spitalverse/internal/assistant"
	"github.com/mesikahq/spitalverse/internal/store"
)

var ErrSearchUnavailable = errors.New("audit search is not configured")

const DefaultIndexPrefix = "spitalverse_audit_"

type EventType string

const (
	EventMutation  EventType = "MUTATION"
	EventAssistant EventType = "ASSISTANT"
	EventExport    EventType = "EXPORT"
)

type AuditEvent struct {
	Timestamp  time.Time       `json:"timestamp"`
	EventType  EventType       `json:"event_type"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Status     string          `json:"status"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type Service interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
	QueryEvents(ctx context.Context, filters map[string]interface{}, from, size int) ([]AuditEvent, error)
}

type service struct {
	es          *elasticsearch.Client
	logger      *logrus.Logger
	indexPrefix string
}

// NewService logs every event with logrus and, when es is non-nil, indexes
// it into a monthly index named indexPrefix + "YYYY.MM".
func NewService(esClient *elasticsearch.Client, logger *logrus.Logger, indexPrefix string) Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	}
	if indexPrefix == "" {
		indexPrefix = DefaultIndexPrefix
	}

	return &service{
		es:          esClient,
		logger:      logger,
		indexPrefix: indexPrefix,
	}
}

func (s *service) LogEvent(ctx context.Context, event *AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = RequestIDFrom(ctx)
	}

	s.logger.WithFields(logrus.Fields{
		"event_type":  event.EventType,
		"action":      event.Action,
		"resource":    event.Resource,
		"resource_id": event.ResourceID,
		"request_id":  event.RequestID,
		"status":      event.Status,
	}).Info("Audit event logged")

	if s.es == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	index := s.indexPrefix + event.Timestamp.UTC().Format("2006.01")
	res, err := s.es.Index(
		index,
		strings.NewReader(string(payload)),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithRefresh("true"),
	)
	if err != nil {
		s.logger.WithError(err).Error("Failed to index audit event")
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		err := fmt.Errorf("index audit event: %s", res.Status())
		s.logger.WithError(err).Error("Failed to index audit event")
		return err
	}
	return nil
}

func (s *service) QueryEvents(ctx context.Context, filters map[string]interface{}, from, size int) ([]AuditEvent, error) {
	if s.es == nil {
		return nil, ErrSearchUnavailable
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": buildQueryFilters(filters),
			},
		},
		"sort": []map[string]interface{}{
			{
				"timestamp": map[string]interface{}{
					"order": "desc",
				},
			},
		},
		"from": from,
		"size": size,
	}

	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.indexPrefix+"*"),
		s.es.Search.WithBody(strings.NewReader(string(queryJSON))),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search audit events: %s", res.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source AuditEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, err
	}

	events := make([]AuditEvent, len(result.Hits.Hits))
	for i, hit := range result.Hits.Hits {
		events[i] = hit.Source
	}

	return events, nil
}

func buildQueryFilters(filters map[string]interface{}) []map[string]interface{} {
	must := []map[string]interface{}{}

	for field, value := range filters {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				field: value,
			},
		})
	}

	return must
}

// StoreObserver records every persisted store mutation.
func StoreObserver(svc Service) store.Observer {
	return store.ObserverFunc(func(ctx context.Context, m store.Mutation) {
		_ = svc.LogEvent(ctx, &AuditEvent{
			Timestamp:  m.At,
			EventType:  EventMutation,
			Action:     string(m.Op),
			Resource:   m.Collection,
			ResourceID: m.ID,
			Status:     "success",
		})
	})
}

// OutcomeRecorder records finished assistant flows.
func OutcomeRecorder(svc Service) assistant.OutcomeFunc {
	return func(ctx context.Context, o assistant.Outcome) {
		details, _ := json.Marshal(map[string]interface{}{
			"source":  o.Source,
			"applied": o.Applied,
		})
		_ = svc.LogEvent(ctx, &AuditEvent{
			Timestamp: o.At,
			EventType: EventAssistant,
			Action:    o.Kind,
			Resource:  "assistant",
			Status:    string(o.Status),
			Details:   details,
		})
	}
}
