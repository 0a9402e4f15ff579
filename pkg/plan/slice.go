// Copyright 2024 Ant Group Co., Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/arenadata/plandump/pkg/accessor"
)

// GangType classifies the worker set executing a slice.
type GangType int

const (
	GangUnallocated GangType = iota
	GangEntryDBReader
	GangSingletonReader
	GangPrimaryReader
	GangPrimaryWriter
)

var gangTypes = map[string]GangType{
	"GANGTYPE_UNALLOCATED":      GangUnallocated,
	"GANGTYPE_ENTRYDB_READER":   GangEntryDBReader,
	"GANGTYPE_SINGLETON_READER": GangSingletonReader,
	"GANGTYPE_PRIMARY_READER":   GangPrimaryReader,
	"GANGTYPE_PRIMARY_WRITER":   GangPrimaryWriter,
}

func (g GangType) String() string {
	switch g {
	case GangUnallocated:
		return "unallocated"
	case GangEntryDBReader:
		return "entrydb reader"
	case GangSingletonReader:
		return "singleton reader"
	case GangPrimaryReader:
		return "primary reader"
	case GangPrimaryWriter:
		return "primary writer"
	}
	return "???"
}

// RunsOnSegments reports whether the gang is dispatched to segments, as
// opposed to running on the coordinator.
func (g GangType) RunsOnSegments() bool {
	return g == GangSingletonReader || g == GangPrimaryReader || g == GangPrimaryWriter
}

// DirectDispatch is the explicit segment subset a slice is sent to.
type DirectDispatch struct {
	Enabled    bool
	ContentIDs []int
}

// Slice is one independently dispatched fragment of the plan.
type Slice struct {
	Index          int
	ParentIndex    int
	GangType       GangType
	GangSize       int
	DirectDispatch DirectDispatch
}

// IsRoot reports whether the slice has no parent.
func (s *Slice) IsRoot() bool {
	return s.ParentIndex < 0
}

// SliceTable is the runtime slice table of one query.
type SliceTable struct {
	LocalSlice int
	Slices     []*Slice
}

// At returns the slice stored at position i.
func (st *SliceTable) At(i int) (*Slice, error) {
	if i < 0 || i >= len(st.Slices) {
		return nil, errors.Wrapf(ErrSliceOutOfRange, "index %d, %d slices", i, len(st.Slices))
	}
	return st.Slices[i], nil
}

// Local returns the locally executing slice, or nil when the local index
// does not name one.
func (st *SliceTable) Local() *Slice {
	if st == nil {
		return nil
	}
	s, err := st.At(st.LocalSlice)
	if err != nil {
		return nil
	}
	return s
}

// Parent returns the parent of s, or nil for a root slice.
func (st *SliceTable) Parent(s *Slice) (*Slice, error) {
	if s.IsRoot() {
		return nil, nil
	}
	p, err := st.At(s.ParentIndex)
	return p, errors.Wrapf(err, "parent of slice %d", s.Index)
}

// DecodeSliceTable decodes an engine slice table; nil means the query has none.
func DecodeSliceTable(n accessor.Node) (*SliceTable, error) {
	if n == nil {
		return nil, nil
	}
	local, err := accessor.Int(n, "localSlice")
	if err != nil {
		return nil, err
	}
	st := &SliceTable{LocalSlice: int(local)}
	list, err := accessor.ListOf(n, "slices")
	if err != nil {
		return nil, err
	}
	st.Slices = make([]*Slice, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		sn, err := accessor.NodeAt(list, i)
		if err != nil {
			return nil, errors.Wrapf(err, "slice %d", i)
		}
		if sn == nil {
			return nil, errors.Wrapf(accessor.ErrNoField, "slice %d is NULL", i)
		}
		s, err := decodeSlice(sn)
		if err != nil {
			return nil, errors.Wrapf(err, "slice %d", i)
		}
		st.Slices = append(st.Slices, s)
	}
	return st, nil
}

// SliceTableOf locates the runtime slice table of an execution state.
func SliceTableOf(estate accessor.Node) (*SliceTable, error) {
	if estate == nil {
		return nil, nil
	}
	n, err := accessor.Child(estate, "es_sliceTable")
	if err != nil {
		return nil, err
	}
	return DecodeSliceTable(n)
}

func decodeSlice(n accessor.Node) (*Slice, error) {
	s := &Slice{}
	idx, err := accessor.Int(n, "sliceIndex")
	if err != nil {
		return nil, err
	}
	parent, err := accessor.Int(n, "parentIndex")
	if err != nil {
		return nil, err
	}
	raw, err := accessor.Enum(n, "gangType")
	if err != nil {
		return nil, err
	}
	gt, ok := gangTypes[raw]
	if !ok {
		return nil, errors.Wrapf(ErrBadEnum, "gangType %q", raw)
	}
	size, err := accessor.Int(n, "gangSize")
	if err != nil {
		return nil, err
	}
	s.Index, s.ParentIndex, s.GangType, s.GangSize = int(idx), int(parent), gt, int(size)

	dd, err := accessor.Child(n, "directDispatch")
	if err != nil || dd == nil {
		return s, err
	}
	if s.DirectDispatch.Enabled, err = accessor.Bool(dd, "isDirectDispatch"); err != nil {
		return nil, err
	}
	ids, err := accessor.ListOf(dd, "contentIds")
	if err != nil {
		return nil, err
	}
	for i := 0; i < ids.Len(); i++ {
		id, err := accessor.IntAt(ids, i)
		if err != nil {
			return nil, errors.Wrap(err, "contentIds")
		}
		s.DirectDispatch.ContentIDs = append(s.DirectDispatch.ContentIDs, int(id))
	}
	return s, nil
}

// GangTypeName renders the engine's symbolic name for a gang type.
func GangTypeName(g GangType) string {
	for k, v := range gangTypes {
		if v == g {
			return k
		}
	}
	return "GANGTYPE_" + strings.ToUpper(g.String())
}
