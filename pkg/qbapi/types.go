package qbapi

import (
	"encoding/json"
	"fmt"
)

// App represents a Quickbase application.
type App struct {
	ID          string        `json:"id"                    yaml:"id"`
	Name        string        `json:"name"                  yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Created     string        `json:"created,omitempty"     yaml:"created,omitempty"`
	Updated     string        `json:"updated,omitempty"     yaml:"updated,omitempty"`
	Variables   []AppVariable `json:"variables,omitempty"   yaml:"variables,omitempty"`
}

// AppVariable is a name/value pair attached to an application.
type AppVariable struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Table represents a Quickbase table.
type Table struct {
	ID                 string `json:"id"                           yaml:"id"`
	Name               string `json:"name"                         yaml:"name"`
	Description        string `json:"description,omitempty"        yaml:"description,omitempty"`
	NextRecordID       int    `json:"nextRecordId,omitempty"       yaml:"nextRecordId,omitempty"`
	NextFieldID        int    `json:"nextFieldId,omitempty"        yaml:"nextFieldId,omitempty"`
	SingularRecordName string `json:"singularRecordName,omitempty" yaml:"singularRecordName,omitempty"`
	PluralRecordName   string `json:"pluralRecordName,omitempty"   yaml:"pluralRecordName,omitempty"`
}

// TableList tolerates both wire shapes of the table listing endpoint:
// {"tables": [...]} and a bare JSON array.
type TableList []Table

// UnmarshalJSON implements json.Unmarshaler.
func (l *TableList) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Tables []Table `json:"tables"`
	}

	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tables != nil {
		*l = wrapped.Tables

		return nil
	}

	var bare []Table

	err := json.Unmarshal(data, &bare)
	if err != nil {
		return fmt.Errorf("%w: table listing: %s", ErrUnexpectedShape, summarize(data))
	}

	*l = bare

	return nil
}

// Field represents a Quickbase field definition.
type Field struct {
	ID        int    `json:"id"                 yaml:"id"`
	Label     string `json:"label"              yaml:"label"`
	FieldType string `json:"fieldType"          yaml:"fieldType"`
	Unique    bool   `json:"unique,omitempty"   yaml:"unique,omitempty"`
	Required  bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// FieldList tolerates both wire shapes of the field listing endpoint:
// {"fields": [...]} and a bare JSON array.
type FieldList []Field

// UnmarshalJSON implements json.Unmarshaler.
func (l *FieldList) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Fields []Field `json:"fields"`
	}

	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Fields != nil {
		*l = wrapped.Fields

		return nil
	}

	var bare []Field

	err := json.Unmarshal(data, &bare)
	if err != nil {
		return fmt.Errorf("%w: field listing: %s", ErrUnexpectedShape, summarize(data))
	}

	*l = bare

	return nil
}

// summarize truncates a payload for error messages.
func summarize(data []byte) string {
	const limit = 80
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}

	return string(data)
}

// Relationship represents a parent/child relationship between tables.
type Relationship struct {
	ID              int     `json:"id"                        yaml:"id"`
	ParentTableID   string  `json:"parentTableId"             yaml:"parentTableId"`
	ChildTableID    string  `json:"childTableId"              yaml:"childTableId"`
	ForeignKeyField *Field  `json:"foreignKeyField,omitempty" yaml:"foreignKeyField,omitempty"`
	LookupFields    []Field `json:"lookupFields,omitempty"    yaml:"lookupFields,omitempty"`
	SummaryFields   []Field `json:"summaryFields,omitempty"   yaml:"summaryFields,omitempty"`
}

// Report represents a saved Quickbase report.
type Report struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name"                  yaml:"name"`
	Type        string `json:"type,omitempty"        yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FieldValue wraps a single cell value on the record wire format.
type FieldValue struct {
	Value interface{} `json:"value"`
}

// FieldRef identifies a field in a query response header.
type FieldRef struct {
	ID    int    `json:"id"    yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// QueryOptions sets the window for a record query.
type QueryOptions struct {
	Skip int `json:"skip"`
	Top  int `json:"top"`
}

// RecordQueryRequest is the records/query request body. Field references are
// platform IDs; friendly names never cross the transport boundary.
type RecordQueryRequest struct {
	From    string        `json:"from"`
	Select  []int         `json:"select,omitempty"`
	Where   string        `json:"where,omitempty"`
	Options *QueryOptions `json:"options,omitempty"`
}

// RecordQueryResponse is the records/query response body.
type RecordQueryResponse struct {
	Fields   []FieldRef                   `json:"fields"`
	Data     []map[string]FieldValue      `json:"data"`
	Metadata *RecordQueryResponseMetadata `json:"metadata,omitempty"`
}

// RecordQueryResponseMetadata carries paging counters of a query response.
type RecordQueryResponseMetadata struct {
	NumFields    int `json:"numFields"`
	NumRecords   int `json:"numRecords"`
	Skip         int `json:"skip"`
	TotalRecords int `json:"totalRecords"`
}

// Record is one row keyed by friendly field label.
type Record map[string]interface{}

// Rows converts a query response into label-keyed records.
func (r *RecordQueryResponse) Rows() []Record {
	rows := make([]Record, 0, len(r.Data))

	for _, rec := range r.Data {
		row := make(Record, len(r.Fields))

		for _, field := range r.Fields {
			cell, ok := rec[fmt.Sprintf("%d", field.ID)]
			if ok {
				row[field.Label] = cell.Value
			} else {
				row[field.Label] = nil
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// FileValue is the cell value of a file attachment field.
type FileValue struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Version  int    `json:"versionNumber,omitempty"`
}

// UpsertResult is the structured outcome of a bulk upsert. A partial success
// (HTTP 207) is surfaced here with per-line errors, never collapsed to a
// boolean.
type UpsertResult struct {
	Created    []int               `json:"createdRecordIds"              yaml:"createdRecordIds"`
	Updated    []int               `json:"updatedRecordIds"              yaml:"updatedRecordIds"`
	Unchanged  []int               `json:"unchangedRecordIds"            yaml:"unchangedRecordIds"`
	Processed  int                 `json:"totalNumberOfRecordsProcessed" yaml:"totalProcessed"`
	Partial    bool                `json:"-"                             yaml:"partial"`
	LineErrors map[string][]string `json:"lineErrors,omitempty"          yaml:"lineErrors,omitempty"`
}

// TableInfo is the cached schema record for one table. Size is captured at
// first access and never refreshed; callers must tolerate staleness.
type TableInfo struct {
	ID     string
	Name   string
	Size   int
	Fields map[string]FieldInfo
}

// FieldInfo is the cached id/type pair for one field, keyed by label.
type FieldInfo struct {
	ID   int
	Type string
}

// FetchJob describes one chunk of a bulk record fetch. Jobs are immutable
// and consumed by exactly one worker.
type FetchJob struct {
	Offset int
	Limit  int
}

// DownloadJob describes one attachment download. Jobs are immutable and
// consumed by exactly one worker.
type DownloadJob struct {
	RecordID interface{}
	FileName string
	URL      string
	Path     string
}

// DownloadResult reports the outcome of one attachment download. Skipped is
// set when the destination already existed; Err records an individual
// failure that did not abort sibling downloads.
type DownloadResult struct {
	RecordID  interface{} `json:"record_id"  yaml:"record_id"`
	FileName  string      `json:"file_name"  yaml:"file_name"`
	SavedPath string      `json:"saved_path" yaml:"saved_path"`
	Skipped   bool        `json:"skipped"    yaml:"skipped"`
	Err       error       `json:"-"          yaml:"-"`
}
