// Package app contains the two application flows. Submit runs where the
// artist works: it versions the shot's layers, writes the manifest and
// submits the job graph. Resolve runs inside the farm's preparation job: it
// reads the manifest back and turns every layer into a renderer parameter
// plan. Both are decoupled from any specific entrypoint like a CLI.
package app
