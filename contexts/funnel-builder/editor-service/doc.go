// Package editorservice implements the block editor's undo/redo history
// inside the funnel-builder context.
//
// Each open editor session wraps the stage-to-blocks map in a bounded linear
// history manager with debounced auto-save to an offline draft store and a
// flush path back to the funnel store. The debounce timer is the only
// asynchronous actor; re-arming is clear-then-set so a new timer always
// supersedes a prior pending one.
package editorservice
