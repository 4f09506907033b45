package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
	"funnelforge/contexts/funnel-builder/funnel-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveFunnel(ctx context.Context, funnel entities.Funnel) error {
	row := funnelModelFromEntity(funnel)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":       row.Name,
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("funnel_repo_save_funnel_failed", create.Error,
			"funnel_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetFunnel(ctx context.Context, funnelID string) (entities.Funnel, error) {
	var row funnelModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(funnelID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Funnel{}, domainerrors.ErrFunnelNotFound
		}
		return entities.Funnel{}, r.logError("funnel_repo_get_funnel_failed", err,
			"funnel_id", strings.TrimSpace(funnelID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveStage(ctx context.Context, stage entities.Stage) error {
	row, err := stageModelFromEntity(stage)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"funnel_id":   row.FunnelID,
			"type":        row.Type,
			"title":       row.Title,
			"order_index": row.OrderIndex,
			"is_enabled":  row.IsEnabled,
			"config":      row.Config,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("funnel_repo_save_stage_failed", create.Error,
			"stage_id", row.ID,
			"funnel_id", row.FunnelID,
		)
	}
	return nil
}

func (r *Repository) GetStage(ctx context.Context, stageID string) (entities.Stage, error) {
	var row stageModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(stageID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Stage{}, domainerrors.ErrStageNotFound
		}
		return entities.Stage{}, r.logError("funnel_repo_get_stage_failed", err,
			"stage_id", strings.TrimSpace(stageID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListStages(ctx context.Context, funnelID string) ([]entities.Stage, error) {
	var rows []stageModel
	if err := r.db.WithContext(ctx).
		Where("funnel_id = ?", strings.TrimSpace(funnelID)).
		Order("order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("funnel_repo_list_stages_failed", err,
			"funnel_id", strings.TrimSpace(funnelID),
		)
	}
	items := make([]entities.Stage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveOption(ctx context.Context, option entities.StageOption) error {
	row := optionModelFromEntity(option)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"stage_id":       row.StageID,
			"text":           row.Text,
			"image_url":      row.ImageURL,
			"style_category": row.StyleCategory,
			"points":         row.Points,
			"order_index":    row.OrderIndex,
			"updated_at":     row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("funnel_repo_save_option_failed", create.Error,
			"option_id", row.ID,
			"stage_id", row.StageID,
		)
	}
	return nil
}

func (r *Repository) GetOption(ctx context.Context, optionID string) (entities.StageOption, error) {
	var row stageOptionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(optionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.StageOption{}, domainerrors.ErrOptionNotFound
		}
		return entities.StageOption{}, r.logError("funnel_repo_get_option_failed", err,
			"option_id", strings.TrimSpace(optionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListOptionsByStage(ctx context.Context, stageID string) ([]entities.StageOption, error) {
	var rows []stageOptionModel
	if err := r.db.WithContext(ctx).
		Where("stage_id = ?", strings.TrimSpace(stageID)).
		Order("order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("funnel_repo_list_options_failed", err,
			"stage_id", strings.TrimSpace(stageID),
		)
	}
	items := make([]entities.StageOption, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveCategory(ctx context.Context, category entities.StyleCategory) error {
	row := categoryModelFromEntity(category)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"funnel_id":   row.FunnelID,
			"name":        row.Name,
			"description": row.Description,
			"image_url":   row.ImageURL,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("funnel_repo_save_category_failed", create.Error,
			"category_id", row.ID,
			"funnel_id", row.FunnelID,
		)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context, funnelID string) ([]entities.StyleCategory, error) {
	var rows []styleCategoryModel
	if err := r.db.WithContext(ctx).
		Where("funnel_id = ?", strings.TrimSpace(funnelID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("funnel_repo_list_categories_failed", err,
			"funnel_id", strings.TrimSpace(funnelID),
		)
	}
	items := make([]entities.StyleCategory, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "funnel-builder/funnel-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("funnel repository call failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type funnelModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (funnelModel) TableName() string {
	return "funnels"
}

func funnelModelFromEntity(funnel entities.Funnel) funnelModel {
	return funnelModel{
		ID:        strings.TrimSpace(funnel.FunnelID),
		Name:      strings.TrimSpace(funnel.Name),
		Status:    string(funnel.Status),
		CreatedAt: funnel.CreatedAt.UTC(),
		UpdatedAt: funnel.UpdatedAt.UTC(),
	}
}

func (m funnelModel) toEntity() entities.Funnel {
	return entities.Funnel{
		FunnelID:  m.ID,
		Name:      m.Name,
		Status:    entities.FunnelStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type stageModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	FunnelID   string    `gorm:"column:funnel_id"`
	Type       string    `gorm:"column:type"`
	Title      string    `gorm:"column:title"`
	OrderIndex int       `gorm:"column:order_index"`
	IsEnabled  bool      `gorm:"column:is_enabled"`
	Config     []byte    `gorm:"column:config"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (stageModel) TableName() string {
	return "stages"
}

func stageModelFromEntity(stage entities.Stage) (stageModel, error) {
	row := stageModel{
		ID:         strings.TrimSpace(stage.StageID),
		FunnelID:   strings.TrimSpace(stage.FunnelID),
		Type:       strings.TrimSpace(stage.Type),
		Title:      strings.TrimSpace(stage.Title),
		OrderIndex: stage.OrderIndex,
		IsEnabled:  stage.IsEnabled,
		CreatedAt:  stage.CreatedAt.UTC(),
		UpdatedAt:  stage.UpdatedAt.UTC(),
	}
	if stage.Config != nil {
		configJSON, err := json.Marshal(stage.Config)
		if err != nil {
			return stageModel{}, err
		}
		row.Config = configJSON
	}
	return row, nil
}

func (m stageModel) toEntity() entities.Stage {
	stage := entities.Stage{
		StageID:    m.ID,
		FunnelID:   m.FunnelID,
		Type:       m.Type,
		Title:      m.Title,
		OrderIndex: m.OrderIndex,
		IsEnabled:  m.IsEnabled,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
	if len(m.Config) > 0 {
		var config map[string]any
		if err := json.Unmarshal(m.Config, &config); err == nil {
			stage.Config = config
		}
	}
	return stage
}

type stageOptionModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	StageID       string    `gorm:"column:stage_id"`
	Text          string    `gorm:"column:text"`
	ImageURL      string    `gorm:"column:image_url"`
	StyleCategory string    `gorm:"column:style_category"`
	Points        int       `gorm:"column:points"`
	OrderIndex    int       `gorm:"column:order_index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (stageOptionModel) TableName() string {
	return "stage_options"
}

func optionModelFromEntity(option entities.StageOption) stageOptionModel {
	return stageOptionModel{
		ID:            strings.TrimSpace(option.OptionID),
		StageID:       strings.TrimSpace(option.StageID),
		Text:          strings.TrimSpace(option.Text),
		ImageURL:      strings.TrimSpace(option.ImageURL),
		StyleCategory: strings.TrimSpace(option.StyleCategory),
		Points:        option.Points,
		OrderIndex:    option.OrderIndex,
		CreatedAt:     option.CreatedAt.UTC(),
		UpdatedAt:     option.UpdatedAt.UTC(),
	}
}

func (m stageOptionModel) toEntity() entities.StageOption {
	return entities.StageOption{
		OptionID:      m.ID,
		StageID:       m.StageID,
		Text:          m.Text,
		ImageURL:      m.ImageURL,
		StyleCategory: m.StyleCategory,
		Points:        m.Points,
		OrderIndex:    m.OrderIndex,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type styleCategoryModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	FunnelID    string    `gorm:"column:funnel_id"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	ImageURL    string    `gorm:"column:image_url"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (styleCategoryModel) TableName() string {
	return "style_categories"
}

func categoryModelFromEntity(category entities.StyleCategory) styleCategoryModel {
	return styleCategoryModel{
		ID:          strings.TrimSpace(category.CategoryID),
		FunnelID:    strings.TrimSpace(category.FunnelID),
		Name:        strings.TrimSpace(category.Name),
		Description: strings.TrimSpace(category.Description),
		ImageURL:    strings.TrimSpace(category.ImageURL),
		CreatedAt:   category.CreatedAt.UTC(),
		UpdatedAt:   category.UpdatedAt.UTC(),
	}
}

func (m styleCategoryModel) toEntity() entities.StyleCategory {
	return entities.StyleCategory{
		CategoryID:  m.ID,
		FunnelID:    m.FunnelID,
		Name:        m.Name,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.FunnelRepository = (*Repository)(nil)
var _ ports.StageRepository = (*Repository)(nil)
var _ ports.OptionRepository = (*Repository)(nil)
var _ ports.CategoryRepository = (*Repository)(nil)
