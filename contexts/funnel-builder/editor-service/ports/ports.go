package ports

import (
	"context"
	"time"

	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
)

// DraftStore is the offline draft collaborator. It is a plain key-value
// capability so tests and multiple concurrent editor sessions stay isolated.
type DraftStore interface {
	PutDraft(ctx context.Context, editorID string, payload entities.DraftPayload) error
	GetDraft(ctx context.Context, editorID string) (entities.DraftPayload, error)
}

// StageBlocksLoader reads the authoring-side block layout for a funnel.
type StageBlocksLoader interface {
	LoadStageBlocks(ctx context.Context, funnelID string) (entities.StageBlocks, error)
}

// StageConfigSaver flushes one stage's block list back to the funnel store.
type StageConfigSaver interface {
	SaveStageBlocks(ctx context.Context, stageID string, blocks []entities.Block) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
