package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	domainerrors "funnelforge/contexts/funnel-runtime/flow-engine/domain/errors"
	"funnelforge/contexts/funnel-runtime/flow-engine/ports"
	"funnelforge/internal/shared/outbox"

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

func (r *Repository) SaveSession(ctx context.Context, session entities.FlowSession) error {
	row, err := sessionModelFromEntity(session)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"funnel_id":           row.FunnelID,
			"participant_name":    row.ParticipantName,
			"current_stage_index": row.CurrentStageIndex,
			"answers":             row.Answers,
			"click_order":         row.ClickOrder,
			"is_complete":         row.IsComplete,
			"result":              row.Result,
			"updated_at":          row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("flow_repo_save_session_failed", create.Error,
			"session_id", strings.TrimSpace(session.SessionID),
			"funnel_id", strings.TrimSpace(session.FunnelID),
		)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.FlowSession, error) {
	var row flowSessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FlowSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.FlowSession{}, r.logError("flow_repo_get_session_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListEnabledStages(ctx context.Context, funnelID string) ([]entities.Stage, error) {
	var rows []stageModel
	if err := r.db.WithContext(ctx).
		Where("funnel_id = ?", strings.TrimSpace(funnelID)).
		Where("is_enabled = ?", true).
		Order("order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("flow_repo_list_stages_failed", err,
			"funnel_id", strings.TrimSpace(funnelID),
		)
	}
	items := make([]entities.Stage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListOptionsByStages(ctx context.Context, stageIDs []string) ([]entities.StageOption, error) {
	if len(stageIDs) == 0 {
		return []entities.StageOption{}, nil
	}
	var rows []stageOptionModel
	if err := r.db.WithContext(ctx).
		Where("stage_id IN ?", stageIDs).
		Order("stage_id ASC, order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("flow_repo_list_options_failed", err,
			"stage_count", len(stageIDs),
		)
	}
	items := make([]entities.StageOption, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListCategories(ctx context.Context, funnelID string) ([]entities.StyleCategory, error) {
	var rows []styleCategoryModel
	if err := r.db.WithContext(ctx).
		Where("funnel_id = ?", strings.TrimSpace(funnelID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("flow_repo_list_categories_failed", err,
			"funnel_id", strings.TrimSpace(funnelID),
		)
	}
	items := make([]entities.StyleCategory, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return r.logError("flow_repo_append_outbox_failed", err,
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("flow_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	publishedAtUTC := publishedAt.UTC()
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": &publishedAtUTC,
		})
	if update.Error != nil {
		return r.logError("flow_repo_mark_outbox_published_failed", update.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "funnel-runtime/flow-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("flow engine repository call failed", fields...)
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

type flowSessionModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	FunnelID          string    `gorm:"column:funnel_id"`
	ParticipantName   string    `gorm:"column:participant_name"`
	CurrentStageIndex int       `gorm:"column:current_stage_index"`
	Answers           []byte    `gorm:"column:answers"`
	ClickOrder        []byte    `gorm:"column:click_order"`
	IsComplete        bool      `gorm:"column:is_complete"`
	Result            []byte    `gorm:"column:result"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (flowSessionModel) TableName() string {
	return "flow_sessions"
}

func sessionModelFromEntity(session entities.FlowSession) (flowSessionModel, error) {
	answers := session.Answers
	if answers == nil {
		answers = map[string][]string{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return flowSessionModel{}, err
	}
	clickOrder := session.ClickOrder
	if clickOrder == nil {
		clickOrder = []string{}
	}
	clickOrderJSON, err := json.Marshal(clickOrder)
	if err != nil {
		return flowSessionModel{}, err
	}
	row := flowSessionModel{
		ID:                strings.TrimSpace(session.SessionID),
		FunnelID:          strings.TrimSpace(session.FunnelID),
		ParticipantName:   strings.TrimSpace(session.ParticipantName),
		CurrentStageIndex: session.CurrentStageIndex,
		Answers:           answersJSON,
		ClickOrder:        clickOrderJSON,
		IsComplete:        session.IsComplete,
		CreatedAt:         session.CreatedAt.UTC(),
		UpdatedAt:         session.UpdatedAt.UTC(),
	}
	if session.Result != nil {
		resultJSON, err := json.Marshal(session.Result)
		if err != nil {
			return flowSessionModel{}, err
		}
		row.Result = resultJSON
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m flowSessionModel) toEntity() (entities.FlowSession, error) {
	session := entities.FlowSession{
		SessionID:         m.ID,
		FunnelID:          m.FunnelID,
		ParticipantName:   m.ParticipantName,
		CurrentStageIndex: m.CurrentStageIndex,
		Answers:           map[string][]string{},
		IsComplete:        m.IsComplete,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
	if len(m.Answers) > 0 {
		if err := json.Unmarshal(m.Answers, &session.Answers); err != nil {
			return entities.FlowSession{}, err
		}
	}
	if len(m.ClickOrder) > 0 {
		if err := json.Unmarshal(m.ClickOrder, &session.ClickOrder); err != nil {
			return entities.FlowSession{}, err
		}
	}
	if len(m.Result) > 0 {
		var result entities.QuizResult
		if err := json.Unmarshal(m.Result, &result); err != nil {
			return entities.FlowSession{}, err
		}
		session.Result = &result
	}
	return session, nil
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

func (m stageModel) toEntity() entities.Stage {
	stage := entities.Stage{
		StageID:    m.ID,
		FunnelID:   m.FunnelID,
		Type:       entities.StageType(m.Type),
		Title:      m.Title,
		OrderIndex: m.OrderIndex,
		IsEnabled:  m.IsEnabled,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
	if len(m.Config) > 0 {
		// Stale or hand-edited config blobs degrade to an empty config rather
		// than failing the whole stage list.
		var config map[string]any
		if err := json.Unmarshal(m.Config, &config); err == nil {
			stage.Config = config
		}
	}
	return stage
}

type stageOptionModel struct {
	ID            string `gorm:"column:id;primaryKey"`
	StageID       string `gorm:"column:stage_id"`
	Text          string `gorm:"column:text"`
	ImageURL      string `gorm:"column:image_url"`
	StyleCategory string `gorm:"column:style_category"`
	Points        int    `gorm:"column:points"`
	OrderIndex    int    `gorm:"column:order_index"`
}

func (stageOptionModel) TableName() string {
	return "stage_options"
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
	}
}

type styleCategoryModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	FunnelID    string `gorm:"column:funnel_id"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	ImageURL    string `gorm:"column:image_url"`
}

func (styleCategoryModel) TableName() string {
	return "style_categories"
}

func (m styleCategoryModel) toEntity() entities.StyleCategory {
	return entities.StyleCategory{
		CategoryID:  m.ID,
		FunnelID:    m.FunnelID,
		Name:        m.Name,
		Description: m.Description,
		ImageURL:    m.ImageURL,
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "flow_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.SessionRepository = (*Repository)(nil)
var _ ports.StageReader = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
