// Package config defines the format-agnostic model the rest of passgrid works
// from: the shot submission request (one Layer per render pass the user asked
// for), the render description exported by the upstream scene-description
// tool (passes, source groups, attribute groups with lock flags), and a
// read-only snapshot of the renderer scene the translator needs to consult.
//
// Concrete loaders live in separate packages (see internal/hcl). Nothing in
// this package reads files.
package config
