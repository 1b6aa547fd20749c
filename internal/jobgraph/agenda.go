package jobgraph

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/framerange"
)

// Agenda splits a frame range into farm tasks. DistributeSingle emits one task
// per range segment; DistributePerFrame emits one task per frame. An empty
// distribution means DistributeSingle.
func Agenda(r framerange.Range, d config.Distribution) ([]Task, error) {
	switch d {
	case config.DistributeSingle, "":
		segments := r.Segments()
		tasks := make([]Task, len(segments))
		for i, seg := range segments {
			tasks[i] = Task{Name: seg.String(), Frames: seg.String()}
		}
		return tasks, nil
	case config.DistributePerFrame:
		frames := r.Frames()
		tasks := make([]Task, len(frames))
		for i, f := range frames {
			s := strconv.Itoa(f)
			tasks[i] = Task{Name: s, Frames: s}
		}
		return tasks, nil
	default:
		return nil, fmt.Errorf("unknown distribution %q", d)
	}
}
