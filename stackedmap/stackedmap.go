// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap provides a map with checkpoint/revert semantics.
package stackedmap

// MapGetter loads a value from the backing source when no frame holds it.
type MapGetter func(key any) (value any, exist bool, err error)

// StackedMap is a key/value map layered into frames. A frame captures all
// writes since the matching Push, so popping it undoes them. Reads fall
// through the frames top-down and finally to the backing source.
type StackedMap struct {
	src    MapGetter
	frames []*frame
}

type frame struct {
	kvs     map[any]any
	ordered []any // keys in first-write order, for journal traversal
}

// New creates a StackedMap reading through to src.
func New(src MapGetter) *StackedMap {
	return &StackedMap{src: src}
}

// Push opens a new frame and returns the depth before the push,
// usable as a revert target for PopTo.
func (m *StackedMap) Push() int {
	m.frames = append(m.frames, &frame{kvs: make(map[any]any)})
	return len(m.frames) - 1
}

// PopTo drops frames until the depth reaches the given value,
// reverting every write made after the matching Push.
func (m *StackedMap) PopTo(depth int) {
	if depth < len(m.frames) {
		m.frames = m.frames[:depth]
	}
}

// Depth returns the number of open frames.
func (m *StackedMap) Depth() int {
	return len(m.frames)
}

// Get returns the value for key, preferring the most recent write.
// The bool reports whether the key exists in any frame or the source.
func (m *StackedMap) Get(key any) (any, bool, error) {
	for i := len(m.frames) - 1; i >= 0; i-- {
		if v, ok := m.frames[i].kvs[key]; ok {
			return v, true, nil
		}
	}
	return m.src(key)
}

// Put writes key/value into the top frame.
// It panics if no frame has been pushed.
func (m *StackedMap) Put(key, value any) {
	top := m.frames[len(m.frames)-1]
	if _, ok := top.kvs[key]; !ok {
		top.ordered = append(top.ordered, key)
	}
	top.kvs[key] = value
}

// Journal traverses surviving writes, oldest frame first. Within a frame
// keys come in first-write order carrying their latest value. The callback
// returning false stops the traversal.
func (m *StackedMap) Journal(cb func(key, value any) bool) {
	for _, f := range m.frames {
		for _, key := range f.ordered {
			if !cb(key, f.kvs[key]) {
				return
			}
		}
	}
}
