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

package archive

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/explain"
)

func newMemoryConf() *config.StorageConf {
	return &config.StorageConf{
		Type:            config.StorageTypeSQLite,
		ConnStr:         ":memory:",
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxIdleTime: -1,
		ConnMaxLifetime: -1,
	}
}

func sampleReport() *explain.Report {
	return &explain.Report{
		Command: "SELECT",
		PlanGen: "planner",
		Lines: []explain.Line{
			{Depth: 0, Kind: explain.LineNode, Text: "Gather Motion 3:1 slice1; segments 3"},
			{Depth: 1, Kind: explain.LineNode, Text: "SeqScan on t1"},
			{Depth: 1, Kind: explain.LineHeader, Text: "InitPlan 1"},
		},
	}
}

func TestBootstrap(t *testing.T) {
	r := require.New(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	r.NoError(err)
	r.True(NeedBootstrap(db))
	r.Error(CheckStorage(db))

	r.NoError(Bootstrap(db))
	r.False(NeedBootstrap(db))
	r.NoError(CheckStorage(db))

	// second wrap must not migrate again
	_, err = NewStore(db)
	r.NoError(err)
}

func TestSaveAndGet(t *testing.T) {
	r := require.New(t)

	store, err := Open(newMemoryConf())
	r.NoError(err)
	defer store.Close()

	rep := sampleReport()
	id, err := store.Save(rep, "core.yaml", "queryDesc")
	r.NoError(err)
	r.NotEmpty(id)

	row, err := store.Get(id)
	r.NoError(err)
	r.Equal("core.yaml", row.Source)
	r.Equal("queryDesc", row.QueryDesc)
	r.Equal("SELECT", row.Command)
	r.Equal(3, row.NumLines)
	r.Equal(rep.String(), row.Text)

	back, err := row.Explained()
	r.NoError(err)
	r.Equal(rep, back)
}

func TestGetMissing(t *testing.T) {
	r := require.New(t)

	store, err := Open(newMemoryConf())
	r.NoError(err)
	defer store.Close()

	_, err = store.Get("no-such-id")
	r.Equal(ErrNotFound, errors.Cause(err))
}

func TestList(t *testing.T) {
	r := require.New(t)

	store, err := Open(newMemoryConf())
	r.NoError(err)
	defer store.Close()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(sampleReport(), "core.yaml", "queryDesc")
		r.NoError(err)
		ids = append(ids, id)
	}

	rows, err := store.List(0)
	r.NoError(err)
	var got []string
	for _, row := range rows {
		got = append(got, row.ID)
	}
	r.ElementsMatch(ids, got)

	rows, err = store.List(2)
	r.NoError(err)
	r.Len(rows, 2)
}

func TestOpenBadConf(t *testing.T) {
	r := require.New(t)

	conf := newMemoryConf()
	conf.Type = "oracle"
	_, err := Open(conf)
	r.Error(err)

	conf = newMemoryConf()
	conf.ConnStr = ""
	_, err = Open(conf)
	r.Error(err)
}
