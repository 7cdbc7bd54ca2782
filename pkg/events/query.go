// Package events extracts severe entries from the system event logs and
// normalizes them into flat records.
package events

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/modoterra/hostsnap/pkg/core"
)

// Default query parameters.
const (
	DefaultThreshold = core.LevelCritical
)

// DefaultChannels are the logical channels read when none are configured.
var DefaultChannels = []string{"Application", "System"}

// Query describes which records to fetch: a set of channels and a severity
// threshold. A record matches when its level is at least as severe as the
// threshold, that is numerically between 1 and the threshold.
type Query struct {
	threshold uint32
	channels  []string
}

// NewQuery builds a query. The threshold is clamped to 1..5; with no channels
// the default channels are used.
func NewQuery(threshold uint32, channels ...string) Query {
	threshold = min(max(threshold, core.LevelCritical), core.LevelVerbose)
	if len(channels) == 0 {
		channels = DefaultChannels
	}
	return Query{
		threshold: threshold,
		channels:  append([]string(nil), channels...),
	}
}

// DefaultQuery reads Critical records from Application and System.
func DefaultQuery() Query {
	return NewQuery(DefaultThreshold, DefaultChannels...)
}

// Threshold returns the least severe level the query accepts.
func (q Query) Threshold() uint32 { return q.threshold }

// Channels returns the channels the query reads.
func (q Query) Channels() []string { return append([]string(nil), q.channels...) }

// Levels returns the accepted levels, most severe first.
func (q Query) Levels() []uint32 {
	levels := make([]uint32, 0, q.threshold)
	for l := core.LevelCritical; l <= q.threshold; l++ {
		levels = append(levels, l)
	}
	return levels
}

// XPath renders the per-channel filter, e.g. *[System[(Level=1 or Level=2)]].
func (q Query) XPath() string {
	conds := make([]string, 0, q.threshold)
	for _, l := range q.Levels() {
		conds = append(conds, fmt.Sprintf("Level=%d", l))
	}
	return "*[System[(" + strings.Join(conds, " or ") + ")]]"
}

type queryList struct {
	XMLName xml.Name     `xml:"QueryList"`
	Query   queryElement `xml:"Query"`
}

type queryElement struct {
	ID      int             `xml:"Id,attr"`
	Path    string          `xml:"Path,attr,omitempty"`
	Selects []selectElement `xml:"Select"`
}

type selectElement struct {
	Path  string `xml:"Path,attr"`
	XPath string `xml:",chardata"`
}

// StructuredXML renders the query as a Windows event log QueryList holding
// one Select per channel, all with the same filter.
func (q Query) StructuredXML() ([]byte, error) {
	filter := q.XPath()
	ql := queryList{Query: queryElement{ID: 0}}
	if len(q.channels) > 0 {
		ql.Query.Path = q.channels[0]
	}
	for _, ch := range q.channels {
		ql.Query.Selects = append(ql.Query.Selects, selectElement{Path: ch, XPath: filter})
	}
	out, err := xml.MarshalIndent(ql, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal query list: %w", err)
	}
	return out, nil
}
