// Package wevtutil queries the Windows event log with wevtutil.exe.
package wevtutil

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/internal/cmdutil"
	"github.com/modoterra/hostsnap/pkg/core"
)

// StructuredQuery is implemented by queries that can render themselves as a
// Windows <QueryList> document.
type StructuredQuery interface {
	core.LogQuery
	StructuredXML() ([]byte, error)
}

// Provider runs `wevtutil qe <queryfile> /sq:true /f:xml`.
type Provider struct {
	bin    string
	logger *zap.Logger
}

// New creates a wevtutil-backed log source.
func New(logger *zap.Logger) *Provider {
	return &Provider{bin: "wevtutil", logger: logger}
}

// WithBinary overrides the wevtutil executable.
func (p *Provider) WithBinary(bin string) *Provider {
	p.bin = bin
	return p
}

func (p *Provider) Name() string { return "wevtutil" }

// Fetch writes the structured query to a temporary file, runs wevtutil
// against it and splits the XML output into one record per <Event>.
func (p *Provider) Fetch(ctx context.Context, q core.LogQuery) (iter.Seq[core.RawRecord], error) {
	sq, ok := q.(StructuredQuery)
	if !ok {
		return nil, fmt.Errorf("wevtutil needs a structured query, got %T", q)
	}
	doc, err := sq.StructuredXML()
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "hostsnap-query-*.xml")
	if err != nil {
		return nil, fmt.Errorf("create query file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(doc); err != nil {
		f.Close()
		return nil, fmt.Errorf("write query file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write query file: %w", err)
	}

	out, err := cmdutil.Output(ctx, p.bin, "qe", f.Name(), "/sq:true", "/f:xml")
	if err != nil {
		return nil, err
	}
	p.logger.Debug("wevtutil finished", zap.Int("bytes", len(out)))
	return SplitEvents(out), nil
}

// SplitEvents yields each <Event> element of data as its own record. Data may
// be a bare sequence of events or wrapped in a root element. If the stream is
// malformed, the remainder is yielded as a final record so the failure is
// reported by the normalizer.
func SplitEvents(data []byte) iter.Seq[core.RawRecord] {
	return func(yield func(core.RawRecord) bool) {
		d := xml.NewDecoder(bytes.NewReader(data))
		for {
			start := d.InputOffset()
			tok, err := d.Token()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				emitRest(data, start, yield)
				return
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "Event" {
				continue
			}
			if err := d.Skip(); err != nil {
				emitRest(data, start, yield)
				return
			}
			end := d.InputOffset()
			if !yield(core.RawRecord{Format: core.FormatXML, Data: data[start:end]}) {
				return
			}
		}
	}
}

func emitRest(data []byte, start int64, yield func(core.RawRecord) bool) {
	if rest := bytes.TrimSpace(data[start:]); len(rest) > 0 {
		yield(core.RawRecord{Format: core.FormatXML, Data: rest})
	}
}
