package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/editor-service/domain/errors"
	"funnelforge/contexts/funnel-builder/editor-service/ports"

	"github.com/google/uuid"
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

func (r *Repository) PutDraft(ctx context.Context, editorID string, payload entities.DraftPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := editorDraftModel{
		EditorID: strings.TrimSpace(editorID),
		Payload:  body,
		SavedAt:  payload.SavedAt.UTC(),
	}
	if row.SavedAt.IsZero() {
		row.SavedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "editor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"payload":  row.Payload,
			"saved_at": row.SavedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("editor_repo_put_draft_failed", create.Error,
			"editor_id", row.EditorID,
		)
	}
	return nil
}

func (r *Repository) GetDraft(ctx context.Context, editorID string) (entities.DraftPayload, error) {
	var row editorDraftModel
	err := r.db.WithContext(ctx).
		Where("editor_id = ?", strings.TrimSpace(editorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DraftPayload{}, domainerrors.ErrDraftNotFound
		}
		return entities.DraftPayload{}, r.logError("editor_repo_get_draft_failed", err,
			"editor_id", strings.TrimSpace(editorID),
		)
	}
	var payload entities.DraftPayload
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		return entities.DraftPayload{}, err
	}
	payload.SavedAt = row.SavedAt.UTC()
	return payload, nil
}

func (r *Repository) LoadStageBlocks(ctx context.Context, funnelID string) (entities.StageBlocks, error) {
	var rows []stageConfigModel
	if err := r.db.WithContext(ctx).
		Where("funnel_id = ?", strings.TrimSpace(funnelID)).
		Order("order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("editor_repo_load_blocks_failed", err,
			"funnel_id", strings.TrimSpace(funnelID),
		)
	}
	out := make(entities.StageBlocks, len(rows))
	for _, row := range rows {
		out[row.ID] = row.blocks()
	}
	return out, nil
}

func (r *Repository) SaveStageBlocks(ctx context.Context, stageID string, blocks []entities.Block) error {
	var row stageConfigModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(stageID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrStageNotFound
		}
		return r.logError("editor_repo_save_blocks_failed", err,
			"stage_id", strings.TrimSpace(stageID),
		)
	}

	config := map[string]any{}
	if len(row.Config) > 0 {
		if err := json.Unmarshal(row.Config, &config); err != nil {
			config = map[string]any{}
		}
	}
	docs := make([]blockDoc, 0, len(blocks))
	for _, block := range blocks {
		docs = append(docs, blockDoc{
			BlockID:    block.BlockID,
			Type:       block.Type,
			Content:    block.Content,
			OrderIndex: block.OrderIndex,
		})
	}
	config["blocks"] = docs
	configJSON, err := json.Marshal(config)
	if err != nil {
		return err
	}

	update := r.db.WithContext(ctx).Model(&stageConfigModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"config":     configJSON,
			"updated_at": time.Now().UTC(),
		})
	if update.Error != nil {
		return r.logError("editor_repo_save_blocks_failed", update.Error,
			"stage_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "funnel-builder/editor-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("editor repository call failed", fields...)
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

type editorDraftModel struct {
	EditorID string    `gorm:"column:editor_id;primaryKey"`
	Payload  []byte    `gorm:"column:payload"`
	SavedAt  time.Time `gorm:"column:saved_at"`
}

func (editorDraftModel) TableName() string {
	return "editor_drafts"
}

type blockDoc struct {
	BlockID    string         `json:"blockId"`
	Type       string         `json:"type"`
	Content    map[string]any `json:"content"`
	OrderIndex int            `json:"orderIndex"`
}

// stageConfigModel is a narrow projection of the shared stages table; the
// editor touches only the config blob.
type stageConfigModel struct {
	ID       string `gorm:"column:id;primaryKey"`
	FunnelID string `gorm:"column:funnel_id"`
	Config   []byte `gorm:"column:config"`
}

func (stageConfigModel) TableName() string {
	return "stages"
}

func (m stageConfigModel) blocks() []entities.Block {
	if len(m.Config) == 0 {
		return []entities.Block{}
	}
	var config struct {
		Blocks []blockDoc `json:"blocks"`
	}
	if err := json.Unmarshal(m.Config, &config); err != nil {
		return []entities.Block{}
	}
	out := make([]entities.Block, 0, len(config.Blocks))
	for _, doc := range config.Blocks {
		out = append(out, entities.Block{
			BlockID:    doc.BlockID,
			Type:       doc.Type,
			Content:    doc.Content,
			OrderIndex: doc.OrderIndex,
		})
	}
	return out
}

var _ ports.DraftStore = (*Repository)(nil)
var _ ports.StageBlocksLoader = (*Repository)(nil)
var _ ports.StageConfigSaver = (*Repository)(nil)
