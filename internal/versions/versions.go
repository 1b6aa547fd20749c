// Package versions assigns output version numbers to layers before
// submission. Reservations are serialized per output so two submissions of
// the same layer never race to the same number.
package versions

import (
	"context"
	"fmt"
)

// OutputKey identifies one versioned output location.
type OutputKey struct {
	Sequence string
	Shot     string
	Layer    string
}

func (k OutputKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Sequence, k.Shot, k.Layer)
}

// Version is a reserved output version.
type Version struct {
	Key    OutputKey
	Number int
	Note   string
}

// Label is the zero-padded version used in paths, e.g. "v003".
func (v Version) Label() string {
	return fmt.Sprintf("v%03d", v.Number)
}

// Store reserves versions.
type Store interface {
	// Reserve returns the version a submission writes to. Without a prior
	// version it is 1; otherwise it is the prior version, bumped when up is
	// set. The note is stored with the version.
	Reserve(ctx context.Context, key OutputKey, up bool, note string) (Version, error)
}

// next computes the version to reserve from the latest recorded one; zero
// means none.
func next(latest int, up bool) int {
	switch {
	case latest <= 0:
		return 1
	case up:
		return latest + 1
	default:
		return latest
	}
}
