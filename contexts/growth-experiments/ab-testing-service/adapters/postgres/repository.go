package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	domainerrors "funnelforge/contexts/growth-experiments/ab-testing-service/domain/errors"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"
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

// PutAssignment inserts once; a concurrent duplicate insert surfaces as a
// conflict so the caller re-reads the winner.
func (r *Repository) PutAssignment(ctx context.Context, assignment entities.Assignment) error {
	row := assignmentModel{
		VisitorID:  strings.TrimSpace(assignment.VisitorID),
		TestName:   strings.TrimSpace(assignment.TestName),
		VariantID:  strings.TrimSpace(assignment.VariantID),
		AssignedAt: assignment.AssignedAt.UTC(),
	}
	if row.AssignedAt.IsZero() {
		row.AssignedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("experiment_repo_put_assignment_failed", err,
			"test_name", row.TestName,
		)
	}
	return nil
}

func (r *Repository) GetAssignment(ctx context.Context, visitorID, testName string) (entities.Assignment, error) {
	var row assignmentModel
	err := r.db.WithContext(ctx).
		Where("visitor_id = ?", strings.TrimSpace(visitorID)).
		Where("test_name = ?", strings.TrimSpace(testName)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Assignment{}, domainerrors.ErrAssignmentNotFound
		}
		return entities.Assignment{}, r.logError("experiment_repo_get_assignment_failed", err,
			"test_name", strings.TrimSpace(testName),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) CountAssignments(ctx context.Context, testName string) (map[string]int, error) {
	var rows []variantCountRow
	err := r.db.WithContext(ctx).
		Model(&assignmentModel{}).
		Select("variant_id, count(*) as total").
		Where("test_name = ?", strings.TrimSpace(testName)).
		Group("variant_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("experiment_repo_count_assignments_failed", err,
			"test_name", strings.TrimSpace(testName),
		)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.VariantID] = row.Total
	}
	return counts, nil
}

func (r *Repository) AppendConversion(ctx context.Context, conversion entities.Conversion) error {
	row := conversionModel{
		ID:         strings.TrimSpace(conversion.ConversionID),
		VisitorID:  strings.TrimSpace(conversion.VisitorID),
		TestName:   strings.TrimSpace(conversion.TestName),
		VariantID:  strings.TrimSpace(conversion.VariantID),
		Label:      strings.TrimSpace(conversion.Label),
		OccurredAt: conversion.OccurredAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.OccurredAt.IsZero() {
		row.OccurredAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("experiment_repo_append_conversion_failed", err,
			"test_name", row.TestName,
		)
	}
	return nil
}

func (r *Repository) CountConversions(ctx context.Context, testName string) (map[string]int, error) {
	var rows []variantCountRow
	err := r.db.WithContext(ctx).
		Model(&conversionModel{}).
		Select("variant_id, count(*) as total").
		Where("test_name = ?", strings.TrimSpace(testName)).
		Group("variant_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("experiment_repo_count_conversions_failed", err,
			"test_name", strings.TrimSpace(testName),
		)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.VariantID] = row.Total
	}
	return counts, nil
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
		return r.logError("experiment_repo_append_outbox_failed", err,
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
		return nil, r.logError("experiment_repo_list_pending_outbox_failed", err)
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
		return r.logError("experiment_repo_mark_outbox_published_failed", update.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "growth-experiments/ab-testing-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("experiment repository call failed", fields...)
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

type SystemRandom struct{}

func (SystemRandom) Float64() float64 {
	return rand.Float64()
}

type variantCountRow struct {
	VariantID string `gorm:"column:variant_id"`
	Total     int    `gorm:"column:total"`
}

type assignmentModel struct {
	VisitorID  string    `gorm:"column:visitor_id;primaryKey"`
	TestName   string    `gorm:"column:test_name;primaryKey"`
	VariantID  string    `gorm:"column:variant_id"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (assignmentModel) TableName() string {
	return "ab_assignments"
}

func (m assignmentModel) toEntity() entities.Assignment {
	return entities.Assignment{
		VisitorID:  m.VisitorID,
		TestName:   m.TestName,
		VariantID:  m.VariantID,
		AssignedAt: m.AssignedAt.UTC(),
	}
}

type conversionModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	VisitorID  string    `gorm:"column:visitor_id"`
	TestName   string    `gorm:"column:test_name"`
	VariantID  string    `gorm:"column:variant_id"`
	Label      string    `gorm:"column:label"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (conversionModel) TableName() string {
	return "ab_conversions"
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
	return "experiment_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.AssignmentStore = (*Repository)(nil)
var _ ports.ConversionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
