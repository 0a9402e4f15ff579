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

// Package accessor defines how the explainer reads a plan or state node out
// of an inspected process image. An implementation exists once per image
// format or engine version; everything else depends only on these types.
package accessor

import (
	"github.com/pkg/errors"
)

var (
	ErrNoField      = errors.New("no such field")
	ErrTypeMismatch = errors.New("field type mismatch")
	ErrOutOfRange   = errors.New("list index out of range")
)

// Node is a tagged record in the inspected image.
type Node interface {
	// Tag returns the raw engine tag, e.g. "T_SeqScan". Untagged embedded
	// structures return "".
	Tag() string
	// Field returns the named field. A field absent from the image yields
	// ErrNoField, a NULL pointer yields a null Value.
	Field(name string) (Value, error)
	// FieldNames lists field names in declaration order.
	FieldNames() []string
}

// List is an ordered sequence with O(1) length.
type List interface {
	Len() int
	At(i int) (Value, error)
}

// Kind classifies a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindBool
	KindString
	KindNode
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNode:
		return "node"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is one field value: a scalar, a child node, a list, or null.
type Value struct {
	kind Kind
	i    int64
	b    bool
	s    string
	node Node
	list List
}

func Null() Value { return Value{} }

func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

func BoolValue(v bool) Value { return Value{kind: KindBool, b: v} }

// StringValue holds strings and symbolic enumeration names alike.
func StringValue(v string) Value { return Value{kind: KindString, s: v} }

func NodeValue(n Node) Value {
	if n == nil {
		return Null()
	}
	return Value{kind: KindNode, node: n}
}

func ListValue(l List) Value {
	if l == nil {
		return Null()
	}
	return Value{kind: KindList, list: l}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) mismatch(want Kind) error {
	return errors.Wrapf(ErrTypeMismatch, "want %s, got %s", want, v.kind)
}

func (v Value) Int() (int64, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	return v.i, nil
}

// Bool accepts 0 and 1 as well, since C booleans are often exported as ints.
func (v Value) Bool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		if v.i == 0 || v.i == 1 {
			return v.i == 1, nil
		}
	}
	return false, v.mismatch(KindBool)
}

func (v Value) Text() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.s, nil
}

func (v Value) Node() (Node, error) {
	if v.kind != KindNode {
		return nil, v.mismatch(KindNode)
	}
	return v.node, nil
}

func (v Value) List() (List, error) {
	if v.kind != KindList {
		return nil, v.mismatch(KindList)
	}
	return v.list, nil
}

// Values is a materialized List.
type Values []Value

func (l Values) Len() int { return len(l) }

func (l Values) At(i int) (Value, error) {
	if i < 0 || i >= len(l) {
		return Null(), errors.Wrapf(ErrOutOfRange, "index %d, length %d", i, len(l))
	}
	return l[i], nil
}
