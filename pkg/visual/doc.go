// ABOUTME: Visual scene package
// ABOUTME: Builds renderer-agnostic frame descriptions from synchronized peaks
// Package visual turns synchronized spectral peaks into per-frame scene
// descriptions. Renderers consume a Frame and never reach back into audio
// state.
package visual
