package events

import (
	"encoding/xml"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/modoterra/hostsnap/pkg/core"
)

// ErrSchemaMismatch is returned when a raw record lacks a required field or
// cannot be decoded.
var ErrSchemaMismatch = errors.New("record does not match event schema")

type xmlEvent struct {
	XMLName xml.Name   `xml:"Event"`
	System  *xmlSystem `xml:"System"`
}

type xmlSystem struct {
	Provider *xmlProvider `xml:"Provider"`
	EventID  *uint32      `xml:"EventID"`
	Level    *uint32      `xml:"Level"`
}

type xmlProvider struct {
	Name string `xml:"Name,attr"`
}

// Normalize projects one raw record onto a LogEventRecord.
func Normalize(rec core.RawRecord) (core.LogEventRecord, error) {
	switch rec.Format {
	case core.FormatXML:
		return normalizeXML(rec.Data)
	case core.FormatJSON:
		return normalizeJournal(rec.Data)
	default:
		return core.LogEventRecord{}, fmt.Errorf("%w: unknown format %q", ErrSchemaMismatch, rec.Format)
	}
}

func normalizeXML(data []byte) (core.LogEventRecord, error) {
	var ev xmlEvent
	if err := xml.Unmarshal(data, &ev); err != nil {
		return core.LogEventRecord{}, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	sys := ev.System
	switch {
	case sys == nil:
		return core.LogEventRecord{}, fmt.Errorf("%w: missing System", ErrSchemaMismatch)
	case sys.Provider == nil || sys.Provider.Name == "":
		return core.LogEventRecord{}, fmt.Errorf("%w: missing Provider Name", ErrSchemaMismatch)
	case sys.EventID == nil:
		return core.LogEventRecord{}, fmt.Errorf("%w: missing EventID", ErrSchemaMismatch)
	case sys.Level == nil:
		return core.LogEventRecord{}, fmt.Errorf("%w: missing Level", ErrSchemaMismatch)
	}
	return core.LogEventRecord{
		EventID:      *sys.EventID,
		ProviderName: sys.Provider.Name,
		Level:        *sys.Level,
	}, nil
}

// Journal export fields used for normalization.
const (
	fieldIdentifier = "SYSLOG_IDENTIFIER"
	fieldComm       = "_COMM"
	fieldPriority   = "PRIORITY"
	fieldFacility   = "SYSLOG_FACILITY"
)

var journalParsers fastjson.ParserPool

func normalizeJournal(data []byte) (core.LogEventRecord, error) {
	p := journalParsers.Get()
	defer journalParsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return core.LogEventRecord{}, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	if v.Type() != fastjson.TypeObject {
		return core.LogEventRecord{}, fmt.Errorf("%w: journal entry is a %s", ErrSchemaMismatch, v.Type())
	}

	provider, _ := stringField(v, fieldIdentifier)
	if provider == "" {
		provider, _ = stringField(v, fieldComm)
	}
	if provider == "" {
		return core.LogEventRecord{}, fmt.Errorf("%w: missing %s", ErrSchemaMismatch, fieldIdentifier)
	}

	prioStr, ok := stringField(v, fieldPriority)
	if !ok {
		return core.LogEventRecord{}, fmt.Errorf("%w: missing %s", ErrSchemaMismatch, fieldPriority)
	}
	prio, err := strconv.Atoi(prioStr)
	if err != nil {
		return core.LogEventRecord{}, fmt.Errorf("%w: %s %q", ErrSchemaMismatch, fieldPriority, prioStr)
	}
	level, ok := core.LevelFromPriority(prio)
	if !ok {
		return core.LogEventRecord{}, fmt.Errorf("%w: %s %d out of range", ErrSchemaMismatch, fieldPriority, prio)
	}

	var eventID uint32
	if facStr, ok := stringField(v, fieldFacility); ok {
		fac, err := strconv.ParseUint(facStr, 10, 32)
		if err != nil {
			return core.LogEventRecord{}, fmt.Errorf("%w: %s %q", ErrSchemaMismatch, fieldFacility, facStr)
		}
		eventID = uint32(fac)
	}

	return core.LogEventRecord{
		EventID:      eventID,
		ProviderName: provider,
		Level:        level,
	}, nil
}

// stringField returns a journal field that was exported as a JSON string.
// Binary fields are exported as byte arrays and are treated as absent.
func stringField(obj *fastjson.Value, name string) (string, bool) {
	f := obj.Get(name)
	if f == nil {
		return "", false
	}
	b, err := f.StringBytes()
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Outcome is the result of normalizing one record.
type Outcome struct {
	Index  int
	Record core.LogEventRecord
	Err    error
}

// OK reports whether the record was normalized.
func (o Outcome) OK() bool { return o.Err == nil }

// NormalizeAll normalizes every record of seq, in delivery order.
func NormalizeAll(seq iter.Seq[core.RawRecord]) []Outcome {
	var outcomes []Outcome
	i := 0
	for rec := range seq {
		r, err := Normalize(rec)
		outcomes = append(outcomes, Outcome{Index: i, Record: r, Err: err})
		i++
	}
	return outcomes
}
