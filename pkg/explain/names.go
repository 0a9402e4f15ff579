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
	"github.com/pkg/errors"

	"github.com/arenadata/plandump/pkg/plan"
)

// Names resolves range table references to display aliases.
type Names struct {
	byOrdinal []string
	byRelID   map[int64]string
}

// NewNames indexes a range table. Entries without a catalog relation
// (subqueries, functions, values lists) are reachable only by ordinal.
// When several entries share a relation id the last one wins.
func NewNames(rtable []plan.RangeTblEntry) *Names {
	n := &Names{
		byOrdinal: make([]string, 0, len(rtable)),
		byRelID:   make(map[int64]string, len(rtable)),
	}
	for _, rte := range rtable {
		n.byOrdinal = append(n.byOrdinal, rte.Alias)
		if rte.RelID != 0 {
			n.byRelID[rte.RelID] = rte.Alias
		}
	}
	return n
}

// Relation returns the alias for a 1-based range table ordinal.
func (n *Names) Relation(ordinal int) (string, error) {
	if ordinal < 1 || ordinal > len(n.byOrdinal) {
		return "", errors.Wrapf(plan.ErrMissingRangeTableEntry, "ordinal %d, %d entries", ordinal, len(n.byOrdinal))
	}
	return n.byOrdinal[ordinal-1], nil
}

// RelationByID returns the alias for a catalog relation id.
func (n *Names) RelationByID(relid int64) (string, error) {
	name, ok := n.byRelID[relid]
	if !ok {
		return "", errors.Wrapf(plan.ErrMissingRelation, "relid %d", relid)
	}
	return name, nil
}
