// Package funnelservice implements funnel authoring inside the funnel-builder
// context.
//
// The module owns write access to funnels, stages, stage options and style
// categories, including whole-funnel import from exported definitions with
// snake_case/camelCase field normalization at the transport edge. The runtime
// flow engine reads the same rows through its own projection.
package funnelservice
