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
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/util/sliceutil"
)

const DefaultTimestampFormat = "2006-01-02 15:04:05.000"

var _ logrus.Formatter = &CustomMonitorFormatter{}

// custom monitor formatter, e.g.: "2020-07-14 16:59:47.714 INFO main.go:107 msg"
type CustomMonitorFormatter struct {
	TimestampFormat string
}

func NewCustomMonitorFormatter(timestampFormat string) *CustomMonitorFormatter {
	return &CustomMonitorFormatter{
		TimestampFormat: timestampFormat,
	}
}

func (f *CustomMonitorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	fileWithLine := ":"
	if entry.HasCaller() {
		fileWithLine = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s", entry.Time.Format(f.TimestampFormat),
		strings.ToUpper(entry.Level.String()), fileWithLine, entry.Message)
	for _, k := range sliceutil.SortMapKeyForDeterminism(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// Setup points the standard logger at out, plus a rotated file when
// cfg.LogFile is set. Reports go to stdout, so out is normally stderr.
func Setup(cfg *config.Config, out io.Writer) error {
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetReportCaller(true)
	logrus.SetFormatter(NewCustomMonitorFormatter(DefaultTimestampFormat))
	if cfg.LogFile == "" {
		logrus.SetOutput(out)
		return nil
	}
	rollingLogger := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogRotate.MaxSizeInMegaBytes, // megabytes
		MaxBackups: cfg.LogRotate.MaxBackupsCount,
		MaxAge:     cfg.LogRotate.MaxAgeInDays, //days
		Compress:   cfg.LogRotate.Compress,
	}
	logrus.SetOutput(io.MultiWriter(out, rollingLogger))
	return nil
}
