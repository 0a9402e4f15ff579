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
	"strings"
)

// DumpGraphviz draws the report in Graphviz format, one vertex per line.
// One can visualize the returned string at http://www.webgraphviz.com/
func (r *Report) DumpGraphviz() string {
	var builder strings.Builder

	fmt.Fprintln(&builder, "digraph G {")
	for i, l := range r.Lines {
		shape := "box"
		switch l.Kind {
		case LineHeader:
			shape = "plaintext"
		case LineReference:
			shape = "note"
		}
		fmt.Fprintf(&builder, "%d [label=%q shape=%s]\n", i, l.Text, shape)
	}
	// parents[d] is the most recent line at depth d.
	var parents []int
	for i, l := range r.Lines {
		if l.Depth > len(parents) {
			continue
		}
		parents = append(parents[:l.Depth], i)
		if l.Depth > 0 {
			fmt.Fprintf(&builder, "%d -> %d\n", parents[l.Depth-1], i)
		}
	}
	fmt.Fprint(&builder, "}")

	return builder.String()
}
