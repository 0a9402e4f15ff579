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

// Package sink delivers finished reports to the console, files and the
// report archive.
package sink

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/arenadata/plandump/pkg/archive"
	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/explain"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Sink receives a report once the whole plan has been explained.
type Sink interface {
	Write(rep *explain.Report) error
}

// Render returns rep in the given format.
func Render(rep *explain.Report, format string) ([]byte, error) {
	switch format {
	case config.FormatText:
		return []byte(rep.String()), nil
	case config.FormatDot:
		return []byte(rep.DumpGraphviz() + "\n"), nil
	case config.FormatJSON:
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// Console writes reports to a stream, usually stdout.
type Console struct {
	w      io.Writer
	format string
	colors *palette
}

type palette struct {
	motion    *color.Color
	header    *color.Color
	reference *color.Color
}

func newPalette() *palette {
	p := &palette{
		motion:    color.New(color.FgYellow, color.Bold),
		header:    color.New(color.FgCyan),
		reference: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.motion, p.header, p.reference} {
		c.EnableColor()
	}
	return p
}

func (p *palette) paint(l explain.Line) string {
	text := l.String()
	indent := strings.Repeat("\t", l.Depth)
	body := strings.TrimPrefix(text, indent)
	switch {
	case l.Kind == explain.LineHeader:
		body = p.header.Sprint(body)
	case l.Kind == explain.LineReference:
		body = p.reference.Sprint(body)
	case strings.Contains(l.Text, " Motion "):
		body = p.motion.Sprint(body)
	}
	return indent + body
}

// NewConsole returns a console sink. Colors apply to the text format only.
func NewConsole(w io.Writer, format string, colored bool) *Console {
	c := &Console{w: w, format: format}
	if colored && format == config.FormatText {
		c.colors = newPalette()
	}
	return c
}

func (c *Console) Write(rep *explain.Report) error {
	if c.colors == nil {
		b, err := Render(rep, c.format)
		if err != nil {
			return err
		}
		_, err = c.w.Write(b)
		return err
	}
	var b strings.Builder
	for _, l := range rep.Lines {
		b.WriteString(c.colors.paint(l))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(c.w, b.String())
	return err
}

// File writes each report to a file, replacing its content.
type File struct {
	path   string
	format string
}

func NewFile(path, format string) *File {
	return &File{path: path, format: format}
}

func (f *File) Write(rep *explain.Report) error {
	b, err := Render(rep, f.format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, b, 0644); err != nil {
		return errors.Wrapf(err, "write report to %s", f.path)
	}
	log.Infof("report written to %s", f.path)
	return nil
}

// Archive stores each report in the archive database.
type Archive struct {
	store     *archive.Store
	source    string
	queryDesc string
	// IDs of the stored reports, in write order.
	IDs []string
}

func NewArchive(store *archive.Store, source, queryDesc string) *Archive {
	return &Archive{store: store, source: source, queryDesc: queryDesc}
}

func (a *Archive) Write(rep *explain.Report) error {
	id, err := a.store.Save(rep, a.source, a.queryDesc)
	if err != nil {
		return err
	}
	a.IDs = append(a.IDs, id)
	log.Infof("report archived with id %s", id)
	return nil
}

// Multi fans a report out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) Write(rep *explain.Report) error {
	for i, s := range m {
		if err := s.Write(rep); err != nil {
			return errors.Wrapf(err, "sink %d (%T)", i, s)
		}
	}
	return nil
}
