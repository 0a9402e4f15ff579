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
	"time"
)

// Report Table stores one explained plan.
// `plandump explain --archive` adds a row in this table.
type Report struct {
	ID        string `gorm:"column:id;type:varchar(64);primaryKey;comment:'report uuid'"`
	Source    string `gorm:"column:source;type:varchar(1024);comment:'image file the plan was read from'"`
	QueryDesc string `gorm:"column:query_desc;type:varchar(256);comment:'path of the QueryDesc inside the image'"`
	Command   string `gorm:"column:command;type:varchar(32);index:idx_command;comment:'statement command type'"`
	PlanGen   string `gorm:"column:plan_gen;type:varchar(32);comment:'planner which generated the plan'"`
	NumLines  int    `gorm:"column:num_lines;comment:'number of report lines'"`
	Text      string `gorm:"column:text;comment:'text rendering of the report'"`
	Lines     string `gorm:"column:lines;comment:'report lines in json format'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// allTables contains all archive tables
var allTables = []interface{}{&Report{}}
