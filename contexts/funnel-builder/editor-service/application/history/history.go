package history

import (
	"log/slog"
	"sync"
	"time"

	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
)

const (
	DefaultMaxDepth         = 50
	DefaultAutoSaveInterval = 30 * time.Second
)

// SaveFunc flushes the given state to the draft collaborator. It is called
// from the debounce timer goroutine with the state as of fire time.
type SaveFunc func(state entities.StageBlocks) error

type Options struct {
	MaxDepth         int
	AutoSaveInterval time.Duration
	Save             SaveFunc
	Clock            func() time.Time
	Logger           *slog.Logger
}

// Manager is a linear undo/redo stack over a StageBlocks value with debounced
// auto-save. Synchronous mutations hold the mutex; the debounce timer is the
// only other actor and re-arming is clear-then-set under the same mutex, so a
// new timer always supersedes a prior pending one.
type Manager struct {
	mu sync.Mutex

	live   entities.StageBlocks
	past   []entities.HistoryState
	future []entities.HistoryState

	maxDepth int
	interval time.Duration
	save     SaveFunc
	clock    func() time.Time
	logger   *slog.Logger

	pending     bool
	seq         uint64
	timer       *time.Timer
	lastSavedAt time.Time
}

func NewManager(initial entities.StageBlocks, opts Options) *Manager {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	interval := opts.AutoSaveInterval
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		live:     initial.Clone(),
		maxDepth: maxDepth,
		interval: interval,
		save:     opts.Save,
		clock:    clock,
		logger:   logger,
	}
}

// SetState commits a new live value. The pre-mutation state is pushed onto the
// past stack (oldest entry evicted at capacity), the redo branch is discarded
// and the auto-save timer is re-armed.
func (m *Manager) SetState(next entities.StageBlocks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushPastLocked()
	m.future = nil
	m.live = next.Clone()
	m.markDirtyLocked()
}

// Undo restores the most recent past snapshot. Reports false when there is
// nothing to undo.
func (m *Manager) Undo() (entities.StageBlocks, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.past) == 0 {
		return m.live.Clone(), false
	}
	top := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, entities.HistoryState{
		Snapshot:  m.live,
		Timestamp: m.clock(),
	})
	m.live = top.Snapshot
	m.markDirtyLocked()
	return m.live.Clone(), true
}

// Redo mirrors Undo against the future stack.
func (m *Manager) Redo() (entities.StageBlocks, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.future) == 0 {
		return m.live.Clone(), false
	}
	top := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.past = append(m.past, entities.HistoryState{
		Snapshot:  m.live,
		Timestamp: m.clock(),
	})
	m.live = top.Snapshot
	m.markDirtyLocked()
	return m.live.Clone(), true
}

// ResetState replaces the live value and clears both stacks and the pending
// flag. This is the initial-load and external-reload path, never an undo.
func (m *Manager) ResetState(next entities.StageBlocks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = next.Clone()
	m.past = nil
	m.future = nil
	m.pending = false
	m.seq++
	m.stopTimerLocked()
}

func (m *Manager) State() entities.StageBlocks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live.Clone()
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

func (m *Manager) PendingChanges() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *Manager) LastSavedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSavedAt
}

// Flush saves immediately regardless of the debounce timer. Used on editor
// close so a session never ends with unsaved pending changes.
func (m *Manager) Flush() error {
	m.mu.Lock()
	if !m.pending || m.save == nil {
		m.mu.Unlock()
		return nil
	}
	m.stopTimerLocked()
	state := m.live.Clone()
	seq := m.seq
	m.mu.Unlock()

	if err := m.save(state); err != nil {
		return err
	}
	m.mu.Lock()
	if m.seq == seq {
		m.pending = false
		m.lastSavedAt = m.clock()
	}
	m.mu.Unlock()
	return nil
}

// Stop cancels any armed auto-save timer without saving.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
}

func (m *Manager) pushPastLocked() {
	m.past = append(m.past, entities.HistoryState{
		Snapshot:  m.live,
		Timestamp: m.clock(),
	})
	if len(m.past) > m.maxDepth {
		overflow := len(m.past) - m.maxDepth
		m.past = append([]entities.HistoryState(nil), m.past[overflow:]...)
	}
}

func (m *Manager) markDirtyLocked() {
	m.pending = true
	m.seq++
	m.armTimerLocked()
}

func (m *Manager) armTimerLocked() {
	if m.save == nil {
		return
	}
	m.stopTimerLocked()
	m.timer = time.AfterFunc(m.interval, m.autoSaveTick)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) autoSaveTick() {
	// The timer goroutine has no other recovery point; a panicking save
	// callback must not take the process down.
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("editor auto-save panicked",
				"event", "editor_autosave_panic",
				"module", "funnel-builder/editor-service",
				"layer", "application",
				"panic", r,
			)
		}
	}()

	m.mu.Lock()
	if !m.pending || m.save == nil {
		m.mu.Unlock()
		return
	}
	state := m.live.Clone()
	seq := m.seq
	m.mu.Unlock()

	err := m.save(state)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.logger.Warn("editor auto-save failed",
			"event", "editor_autosave_failed",
			"module", "funnel-builder/editor-service",
			"layer", "application",
			"error", err.Error(),
		)
		// Pending stays set; the next tick retries.
		m.armTimerLocked()
		return
	}
	if m.seq == seq {
		m.pending = false
		m.lastSavedAt = m.clock()
	}
}
