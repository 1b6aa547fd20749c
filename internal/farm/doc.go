// Package farm implements jobgraph.Submitter for the render farm. SocketIO
// talks to the farm gateway over socket.io; DryRun records the submission and
// makes up job ids.
package farm
