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
	"github.com/arenadata/plandump/pkg/nodetag"
)

// Node is the decoded header of one plan node. Child links stay as
// accessor references and are decoded when the walker reaches them.
type Node struct {
	Tag        nodetag.Tag
	Outer      accessor.Node
	Inner      accessor.Node
	InitPlans  accessor.List
	Qual       accessor.Value
	TargetList accessor.Value
	Flow       *Flow
	Detail     Detail
}

// Detail is the kind-specific part of a plan node.
type Detail interface {
	detail()
}

// Scan covers relation scans.
type Scan struct {
	// RelIndex is the 1-based range table ordinal.
	RelIndex int
}

// IndexScan is a scan that names the index it reads.
type IndexScan struct {
	Scan
	IndexID int64
}

// SubqueryScan wraps a nested plan.
type SubqueryScan struct {
	Scan
	SubPlan accessor.Node
}

// Join covers NestLoop, MergeJoin and HashJoin.
type Join struct {
	JoinType string
	// SharedOuter is set on nested loops that reuse a sibling's outer side.
	SharedOuter bool
}

// TypeName returns the join type without its JOIN_ prefix.
func (j *Join) TypeName() string {
	return strings.TrimPrefix(j.JoinType, "JOIN_")
}

type MotionType int

const (
	MotionHash MotionType = iota
	MotionFixed
	MotionExplicit
)

var motionTypes = map[string]MotionType{
	"MOTIONTYPE_HASH":     MotionHash,
	"MOTIONTYPE_FIXED":    MotionFixed,
	"MOTIONTYPE_EXPLICIT": MotionExplicit,
}

// Motion is a data exchange between two slices.
type Motion struct {
	ID          int
	Type        MotionType
	IsBroadcast bool
}

// Agg keeps the raw strategy so unknown values still render.
type Agg struct {
	Strategy string
}

type SetOp struct {
	Strategy string
	Command  string
}

type ModifyTable struct {
	ResultRelations []int
	Members         accessor.List
}

// DML carries no attributes beyond the statement command.
type DML struct{}

type ShareInputScan struct {
	ShareID int
}

type PartitionSelector struct {
	RelID  int64
	ScanID int
}

// Combinator is any node with an ordered list of member plans.
type Combinator struct {
	Members accessor.List
}

func (*Scan) detail()              {}
func (*IndexScan) detail()         {}
func (*SubqueryScan) detail()      {}
func (*Join) detail()              {}
func (*Motion) detail()            {}
func (*Agg) detail()               {}
func (*SetOp) detail()             {}
func (*ModifyTable) detail()       {}
func (*DML) detail()               {}
func (*ShareInputScan) detail()    {}
func (*PartitionSelector) detail() {}
func (*Combinator) detail()        {}

type decodeFunc func(n accessor.Node) (Detail, error)

var decoders = map[nodetag.Tag]decodeFunc{
	nodetag.SubqueryScan:      decodeSubqueryScan,
	nodetag.NestLoop:          decodeNestLoop,
	nodetag.Motion:            decodeMotion,
	nodetag.Agg:               decodeAgg,
	nodetag.SetOp:             decodeSetOp,
	nodetag.ModifyTable:       decodeModifyTable,
	nodetag.DML:               func(accessor.Node) (Detail, error) { return &DML{}, nil },
	nodetag.ShareInputScan:    decodeShareInputScan,
	nodetag.PartitionSelector: decodePartitionSelector,
}

// Decode reads the common header and kind-specific detail of a plan node.
// An unknown tag fails with nodetag.ErrUnknown.
func Decode(n accessor.Node) (*Node, error) {
	tag, err := nodetag.Parse(n.Tag())
	if err != nil {
		return nil, err
	}
	out := &Node{Tag: tag}
	if out.Outer, err = accessor.Child(n, "lefttree"); err != nil {
		return nil, err
	}
	if out.Inner, err = accessor.Child(n, "righttree"); err != nil {
		return nil, err
	}
	if out.InitPlans, err = accessor.ListOf(n, "initPlan"); err != nil {
		return nil, err
	}
	if out.Qual, err = accessor.Optional(n, "qual"); err != nil {
		return nil, err
	}
	if out.TargetList, err = accessor.Optional(n, "targetlist"); err != nil {
		return nil, err
	}
	flow, err := accessor.Child(n, "flow")
	if err != nil {
		return nil, err
	}
	if out.Flow, err = DecodeFlow(flow); err != nil {
		return nil, errors.Wrapf(err, "flow of %s", n.Tag())
	}

	switch {
	case decoders[tag] != nil:
		out.Detail, err = decoders[tag](n)
	case tag.IsJoin():
		out.Detail, err = decodeJoin(n)
	case tag.HasIndex():
		out.Detail, err = decodeIndexScan(n)
	case tag.IsRelationScan():
		out.Detail, err = decodeScan(n)
	case tag.MembersField() != "":
		out.Detail, err = decodeCombinator(n, tag.MembersField())
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanOf(n accessor.Node) (Scan, error) {
	rel, err := accessor.Int(n, "scanrelid")
	return Scan{RelIndex: int(rel)}, err
}

func decodeScan(n accessor.Node) (Detail, error) {
	s, err := scanOf(n)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeIndexScan(n accessor.Node) (Detail, error) {
	s, err := scanOf(n)
	if err != nil {
		return nil, err
	}
	id, err := accessor.Int(n, "indexid")
	if err != nil {
		return nil, err
	}
	return &IndexScan{Scan: s, IndexID: id}, nil
}

func decodeSubqueryScan(n accessor.Node) (Detail, error) {
	s, err := scanOf(n)
	if err != nil {
		return nil, err
	}
	sub, err := accessor.Struct(n, "subplan")
	if err != nil {
		return nil, err
	}
	return &SubqueryScan{Scan: s, SubPlan: sub}, nil
}

func decodeJoin(n accessor.Node) (Detail, error) {
	jt, err := accessor.Enum(n, "jointype")
	if err != nil {
		return nil, err
	}
	return &Join{JoinType: jt}, nil
}

func decodeNestLoop(n accessor.Node) (Detail, error) {
	d, err := decodeJoin(n)
	if err != nil {
		return nil, err
	}
	shared, err := accessor.Optional(n, "shared_outer")
	if err != nil || shared.IsNull() {
		return d, err
	}
	j := d.(*Join)
	if j.SharedOuter, err = shared.Bool(); err != nil {
		return nil, errors.Wrap(err, "shared_outer")
	}
	return j, nil
}

func decodeMotion(n accessor.Node) (Detail, error) {
	id, err := accessor.Int(n, "motionID")
	if err != nil {
		return nil, err
	}
	raw, err := accessor.Enum(n, "motionType")
	if err != nil {
		return nil, err
	}
	mt, ok := motionTypes[raw]
	if !ok {
		return nil, errors.Wrapf(ErrBadEnum, "motionType %q", raw)
	}
	bcast, err := accessor.Bool(n, "isBroadcast")
	if err != nil {
		return nil, err
	}
	return &Motion{ID: int(id), Type: mt, IsBroadcast: bcast}, nil
}

func decodeAgg(n accessor.Node) (Detail, error) {
	s, err := accessor.Enum(n, "aggstrategy")
	if err != nil {
		return nil, err
	}
	return &Agg{Strategy: s}, nil
}

func decodeSetOp(n accessor.Node) (Detail, error) {
	s, err := accessor.Enum(n, "strategy")
	if err != nil {
		return nil, err
	}
	c, err := accessor.Enum(n, "cmd")
	if err != nil {
		return nil, err
	}
	return &SetOp{Strategy: s, Command: c}, nil
}

func decodeModifyTable(n accessor.Node) (Detail, error) {
	rels, err := accessor.ListOf(n, "resultRelations")
	if err != nil {
		return nil, err
	}
	mt := &ModifyTable{}
	for i := 0; i < rels.Len(); i++ {
		r, err := accessor.IntAt(rels, i)
		if err != nil {
			return nil, errors.Wrap(err, "resultRelations")
		}
		mt.ResultRelations = append(mt.ResultRelations, int(r))
	}
	if mt.Members, err = accessor.ListOf(n, "plans"); err != nil {
		return nil, err
	}
	return mt, nil
}

func decodeShareInputScan(n accessor.Node) (Detail, error) {
	id, err := accessor.Int(n, "share_id")
	if err != nil {
		return nil, err
	}
	return &ShareInputScan{ShareID: int(id)}, nil
}

func decodePartitionSelector(n accessor.Node) (Detail, error) {
	rel, err := accessor.Int(n, "relid")
	if err != nil {
		return nil, err
	}
	scan, err := accessor.Int(n, "scanId")
	if err != nil {
		return nil, err
	}
	return &PartitionSelector{RelID: rel, ScanID: int(scan)}, nil
}

func decodeCombinator(n accessor.Node, field string) (Detail, error) {
	members, err := accessor.ListOf(n, field)
	if err != nil {
		return nil, err
	}
	return &Combinator{Members: members}, nil
}
