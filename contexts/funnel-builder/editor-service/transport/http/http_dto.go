package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BlockPayload struct {
	BlockID    string         `json:"blockId"`
	Type       string         `json:"type"`
	Content    map[string]any `json:"content"`
	OrderIndex int            `json:"orderIndex"`
}

type OpenEditorRequest struct {
	FunnelID string `json:"funnelId"`
}

type ApplyEditRequest struct {
	StageID string         `json:"stageId"`
	Blocks  []BlockPayload `json:"blocks"`
}

type EditorResponse struct {
	EditorID       string                    `json:"editorId"`
	FunnelID       string                    `json:"funnelId"`
	StageBlocks    map[string][]BlockPayload `json:"stageBlocks"`
	CanUndo        bool                      `json:"canUndo"`
	CanRedo        bool                      `json:"canRedo"`
	PendingChanges bool                      `json:"pendingChanges"`
	LastSavedAt    *time.Time                `json:"lastSavedAt,omitempty"`
}

type DraftResponse struct {
	StageBlocks map[string][]BlockPayload `json:"stageBlocks"`
	SavedAt     time.Time                 `json:"savedAt"`
}
