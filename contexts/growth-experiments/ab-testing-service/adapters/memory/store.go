package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	domainerrors "funnelforge/contexts/growth-experiments/ab-testing-service/domain/errors"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	assignments map[string]entities.Assignment
	conversions []entities.Conversion
	outbox      map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		assignments: make(map[string]entities.Assignment),
		outbox:      make(map[string]outboxRecord),
	}
}

func assignmentKey(visitorID, testName string) string {
	return strings.TrimSpace(visitorID) + "/" + strings.TrimSpace(testName)
}

func (s *Store) PutAssignment(_ context.Context, assignment entities.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey(assignment.VisitorID, assignment.TestName)
	if _, exists := s.assignments[key]; exists {
		return domainerrors.ErrConflict
	}
	s.assignments[key] = assignment
	return nil
}

func (s *Store) GetAssignment(_ context.Context, visitorID, testName string) (entities.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignment, ok := s.assignments[assignmentKey(visitorID, testName)]
	if !ok {
		return entities.Assignment{}, domainerrors.ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *Store) CountAssignments(_ context.Context, testName string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, assignment := range s.assignments {
		if assignment.TestName == strings.TrimSpace(testName) {
			counts[assignment.VariantID]++
		}
	}
	return counts, nil
}

func (s *Store) AppendConversion(_ context.Context, conversion entities.Conversion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversions = append(s.conversions, conversion)
	return nil
}

func (s *Store) CountConversions(_ context.Context, testName string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, conversion := range s.conversions {
		if conversion.TestName == strings.TrimSpace(testName) {
			counts[conversion.VariantID]++
		}
	}
	return counts, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Float64() float64 {
	return rand.Float64()
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.AssignmentStore = (*Store)(nil)
var _ ports.ConversionRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.RandomSource = (*Store)(nil)
