package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/editor-service/domain/errors"
	"funnelforge/contexts/funnel-builder/editor-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	drafts      map[string]entities.DraftPayload
	stageBlocks map[string]entities.StageBlocks
	saved       map[string][]entities.Block
}

func NewStore() *Store {
	return &Store{
		drafts:      make(map[string]entities.DraftPayload),
		stageBlocks: make(map[string]entities.StageBlocks),
		saved:       make(map[string][]entities.Block),
	}
}

// SeedStageBlocks installs a funnel's block layout for LoadStageBlocks.
func (s *Store) SeedStageBlocks(funnelID string, blocks entities.StageBlocks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stageBlocks[strings.TrimSpace(funnelID)] = blocks.Clone()
}

// SavedBlocks reports the last block list flushed for a stage.
func (s *Store) SavedBlocks(stageID string) ([]entities.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blocks, ok := s.saved[strings.TrimSpace(stageID)]
	return append([]entities.Block(nil), blocks...), ok
}

func (s *Store) PutDraft(_ context.Context, editorID string, payload entities.DraftPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload.StageBlocks = payload.StageBlocks.Clone()
	s.drafts[strings.TrimSpace(editorID)] = payload
	return nil
}

func (s *Store) GetDraft(_ context.Context, editorID string) (entities.DraftPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[strings.TrimSpace(editorID)]
	if !ok {
		return entities.DraftPayload{}, domainerrors.ErrDraftNotFound
	}
	draft.StageBlocks = draft.StageBlocks.Clone()
	return draft, nil
}

func (s *Store) LoadStageBlocks(_ context.Context, funnelID string) (entities.StageBlocks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blocks, ok := s.stageBlocks[strings.TrimSpace(funnelID)]
	if !ok {
		return entities.StageBlocks{}, nil
	}
	return blocks.Clone(), nil
}

func (s *Store) SaveStageBlocks(_ context.Context, stageID string, blocks []entities.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[strings.TrimSpace(stageID)] = append([]entities.Block(nil), blocks...)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.DraftStore = (*Store)(nil)
var _ ports.StageBlocksLoader = (*Store)(nil)
var _ ports.StageConfigSaver = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
