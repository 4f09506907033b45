package entities

import "time"

// Block is one canvas element on a stage. Content is an opaque payload owned
// by the presentation layer; the editor moves it around without interpreting
// nested values.
type Block struct {
	BlockID    string
	Type       string
	Content    map[string]any
	OrderIndex int
}

// StageBlocks maps a stage id to its ordered block list. It is the single
// mutable value an editor session works on; history snapshots are deep copies
// taken at each committed mutation.
type StageBlocks map[string][]Block

// Clone copies the map, the block slices and each block's content map. Nested
// content values are treated as immutable and shared.
func (b StageBlocks) Clone() StageBlocks {
	if b == nil {
		return StageBlocks{}
	}
	out := make(StageBlocks, len(b))
	for stageID, blocks := range b {
		copied := make([]Block, len(blocks))
		for i, block := range blocks {
			if block.Content != nil {
				content := make(map[string]any, len(block.Content))
				for key, value := range block.Content {
					content[key] = value
				}
				block.Content = content
			}
			copied[i] = block
		}
		out[stageID] = copied
	}
	return out
}

// HistoryState is one undo/redo checkpoint.
type HistoryState struct {
	Snapshot  StageBlocks
	Timestamp time.Time
}

// DraftPayload is the shape handed to the offline draft collaborator on every
// successful auto-save.
type DraftPayload struct {
	StageBlocks StageBlocks `json:"stageBlocks"`
	SavedAt     time.Time   `json:"savedAt"`
}
