package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	domainerrors "funnelforge/contexts/funnel-runtime/flow-engine/domain/errors"
	"funnelforge/contexts/funnel-runtime/flow-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	sessions   map[string]entities.FlowSession
	stages     map[string]entities.Stage
	options    map[string]entities.StageOption
	categories map[string]entities.StyleCategory
	outbox     map[string]outboxRecord
}

func NewStore(seed []entities.FlowSession) *Store {
	sessions := make(map[string]entities.FlowSession, len(seed))
	for _, session := range seed {
		sessions[session.SessionID] = session
	}
	return &Store{
		sessions:   sessions,
		stages:     make(map[string]entities.Stage),
		options:    make(map[string]entities.StageOption),
		categories: make(map[string]entities.StyleCategory),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) SetStage(stage entities.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[strings.TrimSpace(stage.StageID)] = stage
}

func (s *Store) SetOption(option entities.StageOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[strings.TrimSpace(option.OptionID)] = option
}

func (s *Store) SetCategory(category entities.StyleCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[strings.TrimSpace(category.CategoryID)] = category
}

func (s *Store) SaveSession(_ context.Context, session entities.FlowSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[strings.TrimSpace(session.SessionID)] = cloneSession(session)
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.FlowSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.FlowSession{}, domainerrors.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Store) ListEnabledStages(_ context.Context, funnelID string) ([]entities.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Stage, 0)
	for _, stage := range s.stages {
		if stage.FunnelID == strings.TrimSpace(funnelID) && stage.IsEnabled {
			items = append(items, stage)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OrderIndex < items[j].OrderIndex
	})
	return items, nil
}

func (s *Store) ListOptionsByStages(_ context.Context, stageIDs []string) ([]entities.StageOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(stageIDs))
	for _, stageID := range stageIDs {
		wanted[strings.TrimSpace(stageID)] = true
	}
	items := make([]entities.StageOption, 0)
	for _, option := range s.options {
		if wanted[option.StageID] {
			items = append(items, option)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].StageID == items[j].StageID {
			return items[i].OrderIndex < items[j].OrderIndex
		}
		return items[i].StageID < items[j].StageID
	})
	return items, nil
}

func (s *Store) ListCategories(_ context.Context, funnelID string) ([]entities.StyleCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.StyleCategory, 0)
	for _, category := range s.categories {
		if category.FunnelID == strings.TrimSpace(funnelID) {
			items = append(items, category)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CategoryID < items[j].CategoryID
	})
	return items, nil
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

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// cloneSession keeps callers from mutating stored map/slice state through
// shared references.
func cloneSession(session entities.FlowSession) entities.FlowSession {
	answers := make(map[string][]string, len(session.Answers))
	for stageID, optionIDs := range session.Answers {
		answers[stageID] = append([]string(nil), optionIDs...)
	}
	session.Answers = answers
	session.ClickOrder = append([]string(nil), session.ClickOrder...)
	if session.Result != nil {
		result := *session.Result
		result.Secondaries = append([]entities.StyleResult(nil), result.Secondaries...)
		result.AllStyles = append([]entities.StyleResult(nil), result.AllStyles...)
		session.Result = &result
	}
	return session
}

var _ ports.SessionRepository = (*Store)(nil)
var _ ports.StageReader = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
