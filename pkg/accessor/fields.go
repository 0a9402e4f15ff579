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

package accessor

import (
	"github.com/pkg/errors"
)

func field(n Node, name string) (Value, error) {
	v, err := n.Field(name)
	if err != nil {
		return Null(), errors.Wrapf(err, "field %q of %s", name, describe(n))
	}
	return v, nil
}

func describe(n Node) string {
	if tag := n.Tag(); tag != "" {
		return tag
	}
	return "<struct>"
}

// Int reads a required integer field.
func Int(n Node, name string) (int64, error) {
	v, err := field(n, name)
	if err != nil {
		return 0, err
	}
	i, err := v.Int()
	return i, errors.Wrapf(err, "field %q of %s", name, describe(n))
}

// Bool reads a required boolean field.
func Bool(n Node, name string) (bool, error) {
	v, err := field(n, name)
	if err != nil {
		return false, err
	}
	b, err := v.Bool()
	return b, errors.Wrapf(err, "field %q of %s", name, describe(n))
}

// Enum reads a required symbolic enumeration field, e.g. "AGG_HASHED".
func Enum(n Node, name string) (string, error) {
	v, err := field(n, name)
	if err != nil {
		return "", err
	}
	s, err := v.Text()
	return s, errors.Wrapf(err, "field %q of %s", name, describe(n))
}

// Struct reads a required embedded structure or non-NULL pointer.
func Struct(n Node, name string) (Node, error) {
	child, err := Child(n, name)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, errors.Wrapf(ErrNoField, "field %q of %s is NULL", name, describe(n))
	}
	return child, nil
}

// Child reads an optional pointer field. Absent and NULL both yield nil.
func Child(n Node, name string) (Node, error) {
	v, err := n.Field(name)
	if errors.Cause(err) == ErrNoField {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "field %q of %s", name, describe(n))
	}
	if v.IsNull() {
		return nil, nil
	}
	child, err := v.Node()
	return child, errors.Wrapf(err, "field %q of %s", name, describe(n))
}

// ListOf reads an optional list field. Absent and NULL both yield an empty
// list, matching the engine's NIL list convention.
func ListOf(n Node, name string) (List, error) {
	v, err := n.Field(name)
	if errors.Cause(err) == ErrNoField {
		return Values(nil), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "field %q of %s", name, describe(n))
	}
	if v.IsNull() {
		return Values(nil), nil
	}
	l, err := v.List()
	return l, errors.Wrapf(err, "field %q of %s", name, describe(n))
}

// Optional reads any field, treating absence as NULL.
func Optional(n Node, name string) (Value, error) {
	v, err := n.Field(name)
	if errors.Cause(err) == ErrNoField {
		return Null(), nil
	}
	return v, errors.Wrapf(err, "field %q of %s", name, describe(n))
}

// NodeAt returns list element i as a node; NULL elements yield nil.
func NodeAt(l List, i int) (Node, error) {
	v, err := l.At(i)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, nil
	}
	return v.Node()
}

// IntAt returns list element i as an integer.
func IntAt(l List, i int) (int64, error) {
	v, err := l.At(i)
	if err != nil {
		return 0, err
	}
	return v.Int()
}
