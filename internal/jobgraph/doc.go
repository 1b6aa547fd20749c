// Package jobgraph builds the farm submission graph for a shot: one
// preparation job that writes the renderer scene descriptions, and optionally
// one render job per layer that waits on it. The graph is built completely in
// memory and handed to a Submitter in a single call.
package jobgraph
