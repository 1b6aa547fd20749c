package framerange

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		spec     string
		segments []Segment
		frames   []int
		canon    string
	}{
		{
			name:     "single frame",
			spec:     "200",
			segments: []Segment{{200, 200, 1}},
			frames:   []int{200},
			canon:    "200",
		},
		{
			name:     "inclusive range",
			spec:     "101-104",
			segments: []Segment{{101, 104, 1}},
			frames:   []int{101, 102, 103, 104},
			canon:    "101-104",
		},
		{
			name:     "stepped range and single",
			spec:     "101-115x5,200",
			segments: []Segment{{101, 115, 5}, {200, 200, 1}},
			frames:   []int{101, 106, 111, 200},
			canon:    "101-115x5,200",
		},
		{
			name:     "whitespace is ignored",
			spec:     " 1 - 3 , 7 ",
			segments: []Segment{{1, 3, 1}, {7, 7, 1}},
			frames:   []int{1, 2, 3, 7},
			canon:    "1-3,7",
		},
		{
			name:     "overlapping segments are deduplicated",
			spec:     "1-3,2-4",
			segments: []Segment{{1, 3, 1}, {2, 4, 1}},
			frames:   []int{1, 2, 3, 4},
			canon:    "1-3,2-4",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.spec)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.segments, r.Segments()); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.frames, r.Frames())
			assert.Equal(t, tc.canon, r.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, spec := range []string{"", "   ", "a", "1-", "-5", "5-1", "1-10x0", "1-10x", "1,,2", "1.5", "1-2-3"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRange)
		})
	}
}

func TestFlatten(t *testing.T) {
	r, err := Parse("1-5x2,10-12")
	require.NoError(t, err)
	assert.Equal(t, "1,3,5,10-12", r.Flatten().String())
	assert.Equal(t, r.Frames(), r.Flatten().Frames())
}

func TestParse_Bounds(t *testing.T) {
	tests := []struct {
		name string
		spec string
		ok   bool
	}{
		{name: "highest frame", spec: "9999999", ok: true},
		{name: "frame above bound", spec: "10000000"},
		{name: "leading zeros", spec: "0000000101-0000000105", ok: true},
		{name: "near int overflow", spec: "9223372036854775806-9223372036854775807"},
		{name: "beyond int", spec: "99999999999999999999999"},
		{name: "huge step", spec: "1-10x9223372036854775807"},
		{name: "largest expansion", spec: "1-100000", ok: true},
		{name: "span too large", spec: "1-2000000"},
		{name: "segments add up", spec: "1-60000,100001-160000"},
		{name: "stepped span within bound", spec: "1-9999999x100", ok: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.spec)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrMalformedRange)
				return
			}
			require.NoError(t, err)
			assert.LessOrEqual(t, len(r.Frames()), MaxFrames)
		})
	}
}
