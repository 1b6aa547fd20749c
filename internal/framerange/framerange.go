// Package framerange parses and expands frame range strings of the form
// "101-115x5,200": a comma-separated list of single frames (N), inclusive
// ranges (N-M) and stepped ranges (N-MxS).
package framerange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRange is returned when a frame range string does not follow the
// grammar. It is a configuration error.
var ErrMalformedRange = errors.New("malformed frame range")

const (
	// MaxFrame is the highest frame number a range may name.
	MaxFrame = 9_999_999
	// MaxFrames bounds the number of frames a range expands to.
	MaxFrames = 100_000
)

// Segment is one comma-separated element of a frame range.
type Segment struct {
	Start int
	End   int
	Step  int
}

func (s Segment) count() int {
	return (s.End-s.Start)/s.Step + 1
}

// Frames expands the segment into its frames, in ascending order.
func (s Segment) Frames() []int {
	frames := make([]int, 0, s.count())
	for f := s.Start; f <= s.End; f += s.Step {
		frames = append(frames, f)
	}
	return frames
}

// String renders the segment in canonical form.
func (s Segment) String() string {
	switch {
	case s.Start == s.End:
		return strconv.Itoa(s.Start)
	case s.Step == 1:
		return fmt.Sprintf("%d-%d", s.Start, s.End)
	default:
		return fmt.Sprintf("%d-%dx%d", s.Start, s.End, s.Step)
	}
}

// Range is a parsed frame range. The zero value is an empty range.
type Range struct {
	segments []Segment
}

// Parse parses a frame range string. Whitespace around segments is ignored.
func Parse(spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrMalformedRange)
	}

	var r Range
	total := 0
	for _, part := range strings.Split(spec, ",") {
		seg, err := parseSegment(strings.TrimSpace(part))
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", ErrMalformedRange, spec, err)
		}
		total += seg.count()
		if total > MaxFrames {
			return Range{}, fmt.Errorf("%w: %q: more than %d frames", ErrMalformedRange, spec, MaxFrames)
		}
		r.segments = append(r.segments, seg)
	}
	return r, nil
}

func parseSegment(s string) (Segment, error) {
	if s == "" {
		return Segment{}, errors.New("empty segment")
	}

	startStr, rest, isRange := strings.Cut(s, "-")
	start, err := parseFrame(startStr)
	if err != nil {
		return Segment{}, err
	}
	if !isRange {
		return Segment{Start: start, End: start, Step: 1}, nil
	}

	endStr, stepStr, stepped := strings.Cut(rest, "x")
	end, err := parseFrame(endStr)
	if err != nil {
		return Segment{}, err
	}
	step := 1
	if stepped {
		step, err = parseFrame(stepStr)
		if err != nil {
			return Segment{}, err
		}
		if step == 0 {
			return Segment{}, errors.New("step must be positive")
		}
	}
	if end < start {
		return Segment{}, fmt.Errorf("end %d before start %d", end, start)
	}
	return Segment{Start: start, End: end, Step: step}, nil
}

func parseFrame(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid number %q", s)
		}
	}
	if len(strings.TrimLeft(s, "0")) > len(strconv.Itoa(MaxFrame)) {
		return 0, fmt.Errorf("number %s above %d", s, MaxFrame)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n > MaxFrame {
		return 0, fmt.Errorf("number %d above %d", n, MaxFrame)
	}
	return n, nil
}

// Segments returns a copy of the parsed segments, in input order.
func (r Range) Segments() []Segment {
	return append([]Segment(nil), r.segments...)
}

// Frames expands every segment, in input order. A frame listed by more than
// one segment appears once, at its first position.
func (r Range) Frames() []int {
	seen := make(map[int]struct{})
	var frames []int
	for _, seg := range r.segments {
		for _, f := range seg.Frames() {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			frames = append(frames, f)
		}
	}
	return frames
}

// String renders the range in canonical form.
func (r Range) String() string {
	parts := make([]string, len(r.segments))
	for i, seg := range r.segments {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ",")
}

// Flatten returns an equivalent range in which every stepped segment is
// replaced by its individual frames. Plain ranges and single frames are kept.
// The renderer's arbitrary frame list takes this form, it has no steps.
func (r Range) Flatten() Range {
	var out Range
	for _, seg := range r.segments {
		if seg.Step == 1 {
			out.segments = append(out.segments, seg)
			continue
		}
		for _, f := range seg.Frames() {
			out.segments = append(out.segments, Segment{Start: f, End: f, Step: 1})
		}
	}
	return out
}
