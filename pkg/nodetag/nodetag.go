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

package nodetag

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tag identifies a plan node kind. The set is closed: every plan node the
// inspected engine can produce has exactly one Tag.
type Tag int

const (
	Invalid Tag = iota
	Result
	ProjectSet
	ModifyTable
	Append
	MergeAppend
	RecursiveUnion
	Sequence
	BitmapAnd
	BitmapOr
	SeqScan
	DynamicSeqScan
	ExternalScan
	SampleScan
	IndexScan
	DynamicIndexScan
	IndexOnlyScan
	DynamicIndexOnlyScan
	BitmapIndexScan
	DynamicBitmapIndexScan
	BitmapHeapScan
	DynamicBitmapHeapScan
	TidScan
	SubqueryScan
	FunctionScan
	TableFunctionScan
	ValuesScan
	TableFuncScan
	CteScan
	NamedTuplestoreScan
	WorkTableScan
	ForeignScan
	DynamicForeignScan
	CustomScan
	NestLoop
	MergeJoin
	HashJoin
	Material
	Sort
	Agg
	TupleSplit
	WindowAgg
	Unique
	Gather
	GatherMerge
	Hash
	SetOp
	LockRows
	Limit
	Motion
	ShareInputScan
	SplitUpdate
	AssertOp
	PartitionSelector
	DML
	RowTrigger
	Repeat
	Reshuffle

	numTags
)

// Prefix is carried by every raw tag the engine stores in a node header.
const Prefix = "T_"

// ErrUnknown is returned for a raw tag outside the closed set. It means the
// tool and the inspected engine disagree on the node layout.
var ErrUnknown = errors.New("unknown node tag")

var tagNames = [numTags]string{
	Invalid:                "Invalid",
	Result:                 "Result",
	ProjectSet:             "ProjectSet",
	ModifyTable:            "ModifyTable",
	Append:                 "Append",
	MergeAppend:            "MergeAppend",
	RecursiveUnion:         "RecursiveUnion",
	Sequence:               "Sequence",
	BitmapAnd:              "BitmapAnd",
	BitmapOr:               "BitmapOr",
	SeqScan:                "SeqScan",
	DynamicSeqScan:         "DynamicSeqScan",
	ExternalScan:           "ExternalScan",
	SampleScan:             "SampleScan",
	IndexScan:              "IndexScan",
	DynamicIndexScan:       "DynamicIndexScan",
	IndexOnlyScan:          "IndexOnlyScan",
	DynamicIndexOnlyScan:   "DynamicIndexOnlyScan",
	BitmapIndexScan:        "BitmapIndexScan",
	DynamicBitmapIndexScan: "DynamicBitmapIndexScan",
	BitmapHeapScan:         "BitmapHeapScan",
	DynamicBitmapHeapScan:  "DynamicBitmapHeapScan",
	TidScan:                "TidScan",
	SubqueryScan:           "SubqueryScan",
	FunctionScan:           "FunctionScan",
	TableFunctionScan:      "TableFunctionScan",
	ValuesScan:             "ValuesScan",
	TableFuncScan:          "TableFuncScan",
	CteScan:                "CteScan",
	NamedTuplestoreScan:    "NamedTuplestoreScan",
	WorkTableScan:          "WorkTableScan",
	ForeignScan:            "ForeignScan",
	DynamicForeignScan:     "DynamicForeignScan",
	CustomScan:             "CustomScan",
	NestLoop:               "NestLoop",
	MergeJoin:              "MergeJoin",
	HashJoin:               "HashJoin",
	Material:               "Material",
	Sort:                   "Sort",
	Agg:                    "Agg",
	TupleSplit:             "TupleSplit",
	WindowAgg:              "WindowAgg",
	Unique:                 "Unique",
	Gather:                 "Gather",
	GatherMerge:            "GatherMerge",
	Hash:                   "Hash",
	SetOp:                  "SetOp",
	LockRows:               "LockRows",
	Limit:                  "Limit",
	Motion:                 "Motion",
	ShareInputScan:         "ShareInputScan",
	SplitUpdate:            "SplitUpdate",
	AssertOp:               "AssertOp",
	PartitionSelector:      "PartitionSelector",
	DML:                    "DML",
	RowTrigger:             "RowTrigger",
	Repeat:                 "Repeat",
	Reshuffle:              "Reshuffle",
}

var nameToTag map[string]Tag

func init() {
	nameToTag = make(map[string]Tag, numTags)
	for _, t := range All() {
		nameToTag[tagNames[t]] = t
	}
}

// String returns the tag name without the engine prefix, e.g. "SeqScan".
func (t Tag) String() string {
	if t < 0 || t >= numTags {
		return "UnknownTag" + strconv.Itoa(int(t))
	}
	return tagNames[t]
}

// Parse converts a raw engine tag such as "T_SeqScan" into a Tag.
func Parse(raw string) (Tag, error) {
	name, ok := strings.CutPrefix(raw, Prefix)
	if !ok {
		return Invalid, errors.Wrapf(ErrUnknown, "raw tag %q", raw)
	}
	t, ok := nameToTag[name]
	if !ok {
		return Invalid, errors.Wrapf(ErrUnknown, "raw tag %q", raw)
	}
	return t, nil
}

// All returns every valid tag in declaration order.
func All() []Tag {
	tags := make([]Tag, 0, numTags-1)
	for t := Invalid + 1; t < numTags; t++ {
		tags = append(tags, t)
	}
	return tags
}

// IsRelationScan reports whether the node scans a range-table relation and
// is labelled "<Kind> on <relation>".
func (t Tag) IsRelationScan() bool {
	switch t {
	case SeqScan, DynamicSeqScan, ExternalScan, DynamicIndexScan,
		BitmapHeapScan, DynamicBitmapHeapScan, TidScan, SubqueryScan,
		FunctionScan, TableFunctionScan, ValuesScan, CteScan,
		WorkTableScan, ForeignScan:
		return true
	}
	return t.HasIndex()
}

// HasIndex reports whether the scan carries an index oid.
func (t Tag) HasIndex() bool {
	switch t {
	case IndexScan, IndexOnlyScan, BitmapIndexScan, DynamicBitmapIndexScan:
		return true
	}
	return false
}

// IsJoin reports whether the node embeds the shared join header.
func (t Tag) IsJoin() bool {
	return t == NestLoop || t == MergeJoin || t == HashJoin
}

// MembersField returns the name of the list field holding the children of an
// N-ary combinator, or "" when t is not one.
func (t Tag) MembersField() string {
	switch t {
	case Append:
		return "appendplans"
	case MergeAppend:
		return "mergeplans"
	case BitmapAnd, BitmapOr:
		return "bitmapplans"
	case Sequence:
		return "subplans"
	case ModifyTable:
		return "plans"
	}
	return ""
}
