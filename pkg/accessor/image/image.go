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

// Package image reads a process-image export: a YAML (or JSON) document in
// which every engine node is a mapping whose "type" key holds the raw node
// tag, pointers shared between nodes are anchors/aliases, and NULL pointers
// are null or simply omitted.
package image

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
	"gopkg.in/yaml.v3"

	"github.com/arenadata/plandump/pkg/accessor"
)

// TagKey is the mapping key carrying the raw node tag.
const TagKey = "type"

var ErrBadImage = errors.New("malformed image export")

// Image is a loaded export. It is never modified after Load.
type Image struct {
	source string
	root   *yaml.Node
}

// LoadFile loads an export from disk.
func LoadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	img, err := Load(f)
	if err != nil {
		return nil, errors.Annotatef(err, "load image %s", path)
	}
	img.source = path
	return img, nil
}

// Load decodes the first document of r.
func Load(r io.Reader) (*Image, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.Annotate(ErrBadImage, "empty document")
		}
		return nil, errors.Annotate(ErrBadImage, err.Error())
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, errors.Annotate(ErrBadImage, "empty document")
		}
		root = root.Content[0]
	}
	root = resolve(root)
	if root.Kind != yaml.MappingNode {
		return nil, errors.Annotatef(ErrBadImage, "top level is not a mapping (line %d)", root.Line)
	}
	return &Image{source: "<reader>", root: root}, nil
}

// Source names where the image was loaded from.
func (img *Image) Source() string {
	return img.source
}

// Root returns the top-level mapping.
func (img *Image) Root() accessor.Node {
	return newNode(img.root)
}

// Lookup follows a dotted path of field names from the root, e.g.
// "queryDesc.plannedstmt". Every step must land on a non-NULL node.
func (img *Image) Lookup(path string) (accessor.Node, error) {
	var cur accessor.Node = img.Root()
	if path == "" {
		return cur, nil
	}
	for _, name := range strings.Split(path, ".") {
		next, err := accessor.Struct(cur, name)
		if err != nil {
			return nil, errors.Annotatef(err, "lookup %q", path)
		}
		cur = next
	}
	return cur, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

type node struct {
	m   *yaml.Node
	tag string
}

func newNode(m *yaml.Node) *node {
	n := &node{m: m}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == TagKey {
			n.tag = resolve(m.Content[i+1]).Value
			break
		}
	}
	return n
}

func (n *node) Tag() string {
	return n.tag
}

func (n *node) Field(name string) (accessor.Value, error) {
	for i := 0; i+1 < len(n.m.Content); i += 2 {
		if n.m.Content[i].Value == name {
			return convert(n.m.Content[i+1])
		}
	}
	return accessor.Null(), errors.Annotatef(accessor.ErrNoField, "line %d", n.m.Line)
}

func (n *node) FieldNames() []string {
	names := make([]string, 0, len(n.m.Content)/2)
	for i := 0; i+1 < len(n.m.Content); i += 2 {
		if k := n.m.Content[i].Value; k != TagKey {
			names = append(names, k)
		}
	}
	return names
}

type list struct {
	items []*yaml.Node
}

func (l *list) Len() int {
	return len(l.items)
}

func (l *list) At(i int) (accessor.Value, error) {
	if i < 0 || i >= len(l.items) {
		return accessor.Null(), errors.Annotatef(accessor.ErrOutOfRange, "index %d, length %d", i, len(l.items))
	}
	return convert(l.items[i])
}

func convert(v *yaml.Node) (accessor.Value, error) {
	v = resolve(v)
	switch v.Kind {
	case yaml.MappingNode:
		return accessor.NodeValue(newNode(v)), nil
	case yaml.SequenceNode:
		return accessor.ListValue(&list{items: v.Content}), nil
	case yaml.ScalarNode:
		switch v.ShortTag() {
		case "!!null":
			return accessor.Null(), nil
		case "!!int":
			i, err := strconv.ParseInt(v.Value, 0, 64)
			if err != nil {
				return accessor.Null(), errors.Annotatef(ErrBadImage, "line %d: %v", v.Line, err)
			}
			return accessor.IntValue(i), nil
		case "!!bool":
			b, err := strconv.ParseBool(v.Value)
			if err != nil {
				return accessor.Null(), errors.Annotatef(ErrBadImage, "line %d: %v", v.Line, err)
			}
			return accessor.BoolValue(b), nil
		default:
			return accessor.StringValue(v.Value), nil
		}
	}
	return accessor.Null(), errors.Annotatef(ErrBadImage, "line %d: unexpected yaml kind %d", v.Line, v.Kind)
}
