// Package render binds field descriptors to input controls and defines the
// renderer contract shared by the HTML and terminal front ends.
//
// Bind resolves a descriptor through a dispatch table keyed by field type and
// returns a Control carrying the display value, placeholder, choices and the
// disabled state. Renderers consume assembled stages wrapped in a Form and
// produce bytes for a content type.
package render
