package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
	"funnelforge/contexts/funnel-builder/funnel-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	funnels    map[string]entities.Funnel
	stages     map[string]entities.Stage
	options    map[string]entities.StageOption
	categories map[string]entities.StyleCategory
}

func NewStore(seed []entities.Funnel) *Store {
	funnels := make(map[string]entities.Funnel, len(seed))
	for _, funnel := range seed {
		funnels[funnel.FunnelID] = funnel
	}
	return &Store{
		funnels:    funnels,
		stages:     make(map[string]entities.Stage),
		options:    make(map[string]entities.StageOption),
		categories: make(map[string]entities.StyleCategory),
	}
}

func (s *Store) SaveFunnel(_ context.Context, funnel entities.Funnel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funnels[strings.TrimSpace(funnel.FunnelID)] = funnel
	return nil
}

func (s *Store) GetFunnel(_ context.Context, funnelID string) (entities.Funnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	funnel, ok := s.funnels[strings.TrimSpace(funnelID)]
	if !ok {
		return entities.Funnel{}, domainerrors.ErrFunnelNotFound
	}
	return funnel, nil
}

func (s *Store) SaveStage(_ context.Context, stage entities.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[strings.TrimSpace(stage.StageID)] = cloneStage(stage)
	return nil
}

func (s *Store) GetStage(_ context.Context, stageID string) (entities.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stage, ok := s.stages[strings.TrimSpace(stageID)]
	if !ok {
		return entities.Stage{}, domainerrors.ErrStageNotFound
	}
	return cloneStage(stage), nil
}

func (s *Store) ListStages(_ context.Context, funnelID string) ([]entities.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Stage, 0)
	for _, stage := range s.stages {
		if stage.FunnelID == strings.TrimSpace(funnelID) {
			items = append(items, cloneStage(stage))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OrderIndex < items[j].OrderIndex
	})
	return items, nil
}

func (s *Store) SaveOption(_ context.Context, option entities.StageOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[strings.TrimSpace(option.OptionID)] = option
	return nil
}

func (s *Store) GetOption(_ context.Context, optionID string) (entities.StageOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	option, ok := s.options[strings.TrimSpace(optionID)]
	if !ok {
		return entities.StageOption{}, domainerrors.ErrOptionNotFound
	}
	return option, nil
}

func (s *Store) ListOptionsByStage(_ context.Context, stageID string) ([]entities.StageOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.StageOption, 0)
	for _, option := range s.options {
		if option.StageID == strings.TrimSpace(stageID) {
			items = append(items, option)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OrderIndex < items[j].OrderIndex
	})
	return items, nil
}

func (s *Store) SaveCategory(_ context.Context, category entities.StyleCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[strings.TrimSpace(category.CategoryID)] = category
	return nil
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

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// cloneStage keeps callers from mutating stored config maps through shared
// references.
func cloneStage(stage entities.Stage) entities.Stage {
	if stage.Config != nil {
		config := make(map[string]any, len(stage.Config))
		for key, value := range stage.Config {
			config[key] = value
		}
		stage.Config = config
	}
	return stage
}

var _ ports.FunnelRepository = (*Store)(nil)
var _ ports.StageRepository = (*Store)(nil)
var _ ports.OptionRepository = (*Store)(nil)
var _ ports.CategoryRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
