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

package logutil

import (
	"fmt"
	"time"
)

// MonitorLogEntry summarizes one plandump invocation for log-based monitoring
type MonitorLogEntry struct {
	ActionName string
	Source     string
	QueryDesc  string
	Command    string
	Lines      int
	CostTime   time.Duration
	ErrorCode  string
	ErrorMsg   string
}

func (b MonitorLogEntry) String() string {
	return fmt.Sprintf("|ActionName:%v|Source:%v|QueryDesc:%v|Command:%v|Lines:%v|CostTime:%v|ErrorCode:%v|ErrorMsg:%v",
		b.ActionName, b.Source, b.QueryDesc, b.Command, b.Lines, b.CostTime, b.ErrorCode, b.ErrorMsg)
}
