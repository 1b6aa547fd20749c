// Package mergeplan plans the merge proxies that render sub-groups of scene
// objects. Objects targeting the same merge name share one proxy, with one
// input slot per source path and a group filter that is the union of the
// patterns requested for that path.
package mergeplan

import (
	"strings"

	"github.com/specialistvlad/passgrid/internal/params"
	"github.com/specialistvlad/passgrid/internal/pass"
)

// PatternSet is an insertion-ordered set of primitive group patterns.
type PatternSet struct {
	items []string
	seen  map[string]struct{}
}

// Add inserts a pattern and reports whether it was new.
func (s *PatternSet) Add(pattern string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[pattern]; ok {
		return false
	}
	s.seen[pattern] = struct{}{}
	s.items = append(s.items, pattern)
	return true
}

// Items returns the patterns in insertion order.
func (s *PatternSet) Items() []string {
	return append([]string(nil), s.items...)
}

// String is the space-joined group filter.
func (s *PatternSet) String() string {
	return strings.Join(s.items, " ")
}

// Merge is one planned proxy.
type Merge struct {
	Name    string
	sources []string
	groups  map[string]*PatternSet
	// copyOf is the first source, whose object settings the proxy inherits.
	copyOf string
}

// Sources returns the source paths in first-appearance order.
func (m *Merge) Sources() []string {
	return append([]string(nil), m.sources...)
}

// Patterns returns the pattern set of a source path.
func (m *Merge) Patterns(source string) *PatternSet {
	return m.groups[source]
}

// MergePlan maps merge names to source paths to pattern sets.
type MergePlan struct {
	order  []string
	merges map[string]*Merge
}

// New returns an empty plan.
func New() *MergePlan {
	return &MergePlan{merges: make(map[string]*Merge)}
}

// Plan collects the sub-group objects of a pass into a merge plan. Whole
// objects are ignored.
func Plan(objects []*pass.RenderObject) *MergePlan {
	mp := New()
	for _, o := range objects {
		mp.Add(o)
	}
	return mp
}

// Add accumulates one object. Patterns already present for the same merge
// name and source path are not added twice.
func (mp *MergePlan) Add(o *pass.RenderObject) {
	if !o.IsMerge() {
		return
	}
	m, ok := mp.merges[o.MergeName]
	if !ok {
		m = &Merge{Name: o.MergeName, groups: make(map[string]*PatternSet), copyOf: o.SourcePath}
		mp.merges[o.MergeName] = m
		mp.order = append(mp.order, o.MergeName)
	}
	set, ok := m.groups[o.SourcePath]
	if !ok {
		set = &PatternSet{}
		m.groups[o.SourcePath] = set
		m.sources = append(m.sources, o.SourcePath)
	}
	set.Add(o.PrimGroup)
}

// Len returns the number of planned proxies.
func (mp *MergePlan) Len() int {
	return len(mp.order)
}

// Names returns the merge names in first-appearance order.
func (mp *MergePlan) Names() []string {
	return append([]string(nil), mp.order...)
}

// Merge returns the planned proxy for a merge name.
func (mp *MergePlan) Merge(name string) (*Merge, bool) {
	m, ok := mp.merges[name]
	return m, ok
}

// ObjectPath is the object node of a proxy.
func ObjectPath(name string) string {
	return pass.TmpSubnet + "/" + name
}

// SOPPath is the object-merge node inside a proxy.
func SOPPath(name string) string {
	return ObjectPath(name) + "/" + name
}

// Realize records the creation of every planned proxy into scope.
func (mp *MergePlan) Realize(scope params.Scope) {
	if mp.Len() == 0 {
		return
	}
	if scope.Create(pass.TmpSubnet, "subnet") {
		scope.Flag(pass.TmpSubnet, params.FlagHidden, true)
		scope.Flag(pass.TmpSubnet, params.FlagDisplay, false)
	}

	for _, name := range mp.order {
		m := mp.merges[name]
		obj := ObjectPath(name)
		sop := SOPPath(name)
		scope.CreateCopy(obj, "geo", m.copyOf)
		scope.Create(sop, "object_merge")

		scope.Set(sop, "numobj", len(m.sources))
		scope.Set(sop, "xformtype", 1)
		for i, source := range m.sources {
			scope.Set(sop, params.Indexed("objpath", i+1), source)
			scope.Set(sop, params.Indexed("group", i+1), m.groups[source].String())
		}
		scope.Flag(sop, params.FlagRender, true)
	}
}
