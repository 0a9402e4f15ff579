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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r := require.New(t)

	for _, tag := range All() {
		parsed, err := Parse(Prefix + tag.String())
		r.NoError(err)
		r.Equal(tag, parsed)
	}

	for _, raw := range []string{"SeqScan", "T_", "T_Bogus", "T_Invalid", ""} {
		_, err := Parse(raw)
		r.Error(err, raw)
		r.Equal(ErrUnknown, errors.Cause(err))
		r.Contains(err.Error(), raw)
	}
}

func TestFamilies(t *testing.T) {
	a := require.New(t)

	a.True(SeqScan.IsRelationScan())
	a.True(SubqueryScan.IsRelationScan())
	a.True(IndexScan.IsRelationScan())
	a.False(SampleScan.IsRelationScan())
	a.False(Motion.IsRelationScan())

	a.True(DynamicBitmapIndexScan.HasIndex())
	a.False(DynamicIndexScan.HasIndex())

	a.True(HashJoin.IsJoin())
	a.False(Hash.IsJoin())

	a.Equal("appendplans", Append.MembersField())
	a.Equal("bitmapplans", BitmapOr.MembersField())
	a.Equal("plans", ModifyTable.MembersField())
	a.Equal("", SubqueryScan.MembersField())

	a.Equal("UnknownTag999", Tag(999).String())
}
