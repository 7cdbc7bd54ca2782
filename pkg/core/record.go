package core

// RecordFormat identifies the encoding of a raw log record.
type RecordFormat string

const (
	// FormatXML is a Windows event log <Event> document.
	FormatXML RecordFormat = "xml"
	// FormatJSON is a journal entry exported as a flat JSON object.
	FormatJSON RecordFormat = "json"
)

// RawRecord is a single structured log entry as delivered by a log source.
type RawRecord struct {
	Format RecordFormat
	Data   []byte
}
