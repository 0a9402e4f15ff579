// Copyright 2015 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Modified by Ant Group in 2023

package testutil

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/pingcap/check"
	"github.com/pingcap/errors"
)

// record rewrites the golden output files from the current results.
var record bool

func init() {
	flag.BoolVar(&record, "record", false, "to generate test result")
}

// Recording reports whether the -record flag is set.
func Recording() bool {
	return record
}

type testCases struct {
	Name       string
	Cases      *json.RawMessage // For delayed parse.
	decodedOut interface{}      // For generate output.
}

// TestData holds the golden cases of one suite, read from
// <dir>/<suite>_in.json and <dir>/<suite>_out.json. Each entry is keyed by
// the name of the test method that consumes it.
type TestData struct {
	dir     string
	prefix  string
	input   []testCases
	output  []testCases
	funcMap map[string]int
}

// LoadTestSuiteData loads test suite data from file.
func LoadTestSuiteData(dir, suiteName string) (res TestData, err error) {
	res.dir = dir
	res.prefix = filepath.Join(dir, suiteName)
	if res.input, err = loadTestSuiteCases(res.prefix + "_in.json"); err != nil {
		return res, errors.Trace(err)
	}
	if record {
		res.output = make([]testCases, len(res.input))
		for i := range res.input {
			res.output[i].Name = res.input[i].Name
		}
	} else {
		if res.output, err = loadTestSuiteCases(res.prefix + "_out.json"); err != nil {
			return res, errors.Trace(err)
		}
		if len(res.input) != len(res.output) {
			return res, errors.Errorf("number of input cases %d does not match output cases %d", len(res.input), len(res.output))
		}
	}
	res.funcMap = make(map[string]int, len(res.input))
	for i, test := range res.input {
		if test.Name != res.output[i].Name {
			return res, errors.Errorf("input name of case %d %s does not match output %s", i, test.Name, res.output[i].Name)
		}
		res.funcMap[test.Name] = i
	}
	return res, nil
}

// Path resolves a fixture file that lives next to the case files.
func (t *TestData) Path(elem ...string) string {
	return filepath.Join(append([]string{t.dir}, elem...)...)
}

// comments are "  // ..." tails, which JSON does not allow.
var comments = regexp.MustCompile("(?s)  //.*?\n")

func loadTestSuiteCases(filePath string) ([]testCases, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var res []testCases
	err = json.Unmarshal(comments.ReplaceAll(raw, nil), &res)
	return res, errors.Annotatef(err, "parse %s", filePath)
}

// GetTestCases fills in and out with the cases of the calling test method.
// While recording, out is sized to match in and later written back by
// GenerateOutputIfNeeded.
func (t *TestData) GetTestCases(c *check.C, in interface{}, out interface{}) {
	pc, _, _, ok := runtime.Caller(1)
	c.Assert(ok, check.IsTrue)
	funcName := runtime.FuncForPC(pc).Name()
	funcName = funcName[strings.LastIndex(funcName, ".")+1:]

	idx, ok := t.funcMap[funcName]
	c.Assert(ok, check.IsTrue, check.Commentf("Must get test %s", funcName))
	c.Assert(json.Unmarshal(*t.input[idx].Cases, in), check.IsNil)
	if record {
		n := reflect.ValueOf(in).Elem().Len()
		if v := reflect.ValueOf(out).Elem(); v.Kind() == reflect.Slice {
			v.Set(reflect.MakeSlice(v.Type(), n, n))
		}
	} else {
		c.Assert(json.Unmarshal(*t.output[idx].Cases, out), check.IsNil)
	}
	t.output[idx].decodedOut = out
}

// OnRecord runs updateFunc only while recording.
func (t *TestData) OnRecord(updateFunc func()) {
	if record {
		updateFunc()
	}
}

// GenerateOutputIfNeeded writes <suite>_out.json while recording.
func (t *TestData) GenerateOutputIfNeeded() error {
	if !record {
		return nil
	}
	for i, test := range t.output {
		b, err := marshal(test.decodedOut)
		if err != nil {
			return errors.Trace(err)
		}
		rm := json.RawMessage(b)
		t.output[i].Cases = &rm
	}
	b, err := marshal(t.output)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.WriteFile(t.prefix+"_out.json", b, 0644))
}

func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
