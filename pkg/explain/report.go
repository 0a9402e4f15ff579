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

package explain

import (
	"fmt"
	"io"
	"strings"
)

// LineKind tells how a report line is rendered.
type LineKind int

const (
	// LineNode describes a plan node.
	LineNode LineKind = iota
	// LineHeader names the sub-plan or init-plan printed below it.
	LineHeader
	// LineReference points at a subtree printed elsewhere.
	LineReference
)

func (k LineKind) String() string {
	switch k {
	case LineNode:
		return "node"
	case LineHeader:
		return "header"
	case LineReference:
		return "reference"
	}
	return "unknown"
}

func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *LineKind) UnmarshalText(text []byte) error {
	for _, c := range []LineKind{LineNode, LineHeader, LineReference} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown line kind %q", text)
}

// Line is one row of a report.
type Line struct {
	Depth int      `json:"depth"`
	Kind  LineKind `json:"kind"`
	Text  string   `json:"text"`
}

func (l Line) String() string {
	indent := strings.Repeat("\t", l.Depth)
	if l.Kind == LineHeader {
		return indent + l.Text
	}
	return indent + "-> " + l.Text
}

// Report is a rendered plan, in output order.
type Report struct {
	Command string `json:"command"`
	PlanGen string `json:"plan_gen"`
	Lines   []Line `json:"lines"`
}

func (r *Report) add(depth int, kind LineKind, text string) {
	r.Lines = append(r.Lines, Line{Depth: depth, Kind: kind, Text: text})
}

func (r *Report) String() string {
	var b strings.Builder
	for _, l := range r.Lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo writes the text rendering of r to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
