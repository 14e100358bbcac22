package qbapi

import (
	"context"
	"time"
)

// SchemaClients provides access to schema-level resource clients.
type SchemaClients interface {
	Apps() AppsClient
	Tables() TablesClient
	Fields() FieldsClient
	Relationships() RelationshipsClient
}

// DataClients provides access to record-level resource clients.
type DataClients interface {
	Records() RecordsClient
	Reports() ReportsClient
	Files() FilesClient
	Formulas() FormulasClient
}

// Client is the full client surface. A concrete implementation is provided
// by the qbclient package.
type Client interface {
	SchemaClients
	DataClients

	// Metadata returns the name-to-ID resolution layer shared by every
	// resource client.
	Metadata() MetadataResolver
}

// MetadataResolver maps friendly app/table/field names to platform IDs,
// caching schema as it goes. Population is not safe for concurrent use; warm
// the cache before starting a concurrent fetch.
type MetadataResolver interface {
	ResolveApp(identifier string) (string, error)
	AppID(identifier string) (string, error)
	Tables(ctx context.Context, app string) ([]Table, error)
	Table(ctx context.Context, app, table string) (*TableInfo, error)
	TableID(ctx context.Context, app, table string) (string, error)
	FieldMap(ctx context.Context, app, table string) (map[string]FieldInfo, error)
	FieldID(ctx context.Context, app, table, label string) (int, error)
	Relationships(ctx context.Context, app, table string) ([]Relationship, error)

	// Describe snapshots the warmed cache, keyed app name, then table name,
	// then id/size/fields entries.
	Describe() map[string]map[string]map[string]interface{}
}

// AppsClient manages Quickbase applications.
type AppsClient interface {
	Create(ctx context.Context, request *AppCreateRequest) (*App, error)
	Get(ctx context.Context, app string) (*App, error)
	Update(ctx context.Context, app string, request *AppUpdateRequest) (*App, error)
	Delete(ctx context.Context, app string) error
	Copy(ctx context.Context, app string, request *AppCopyRequest) (*App, error)
}

// TablesClient manages tables within an application.
type TablesClient interface {
	Create(ctx context.Context, app string, request *TableCreateRequest) (*Table, error)
	Get(ctx context.Context, app, table string) (*Table, error)
	List(ctx context.Context, app string) ([]Table, error)
	Update(ctx context.Context, app, table string, request *TableUpdateRequest) (*Table, error)
	Delete(ctx context.Context, app, table string) error
}

// FieldsClient manages fields within a table.
type FieldsClient interface {
	Create(ctx context.Context, app, table string, request *FieldCreateRequest) (*Field, error)
	Get(ctx context.Context, app, table string, fieldID int) (*Field, error)
	List(ctx context.Context, app, table string) ([]Field, error)
	Delete(ctx context.Context, app, table string, labels []string) error
}

// RelationshipsClient manages table relationships.
type RelationshipsClient interface {
	List(ctx context.Context, app, table string) ([]Relationship, error)
	Create(ctx context.Context, app, table string, request *RelationshipCreateRequest) (*Relationship, error)
	Delete(ctx context.Context, app, table, referenceFieldLabel string) (int, error)
}

// RecordsClient queries and mutates records.
type RecordsClient interface {
	// Query runs a single-page records/query with friendly field labels.
	Query(ctx context.Context, app, table string, selectFields []string, where string, opts *QueryOptions) ([]Record, error)

	// Upsert inserts or updates label-keyed records, resolving labels to
	// field IDs. A 207 from the API yields a result with Partial set and a
	// *PartialWriteError.
	Upsert(ctx context.Context, app, table string, records []Record, opts *UpsertOptions) (*UpsertResult, error)

	// DeleteWhere deletes records matching a filter expression and returns
	// the number deleted.
	DeleteWhere(ctx context.Context, app, table, where string) (int, error)

	// ExportAll fetches every matching record in concurrent chunks. Any
	// chunk failure fails the export; no partial row set is returned.
	ExportAll(ctx context.Context, app, table, where string, opts *ExportOptions) ([]Record, error)

	// ExportCSV runs ExportAll and materializes the rows as a CSV file under
	// outputDir. Zero matching records writes nothing and returns "".
	ExportCSV(ctx context.Context, app, table, where, outputDir string, opts *ExportOptions) (string, error)
}

// ReportsClient runs saved reports.
type ReportsClient interface {
	List(ctx context.Context, app, table string) ([]Report, error)
	Get(ctx context.Context, app, table string, reportID int) (*Report, error)
	Run(ctx context.Context, app, table string, reportID int, opts *QueryOptions) ([]Record, error)
}

// FilesClient downloads file attachments.
type FilesClient interface {
	// AttachmentFields returns the labels of file-typed fields in a table.
	AttachmentFields(ctx context.Context, app, table string) ([]string, error)

	// DownloadAll downloads every attachment in fieldLabel for records
	// matching where into targetDir. Individual failures are logged and
	// collected; they never abort sibling downloads.
	DownloadAll(ctx context.Context, app, table, fieldLabel, targetDir, where string) ([]DownloadResult, error)
}

// FormulasClient evaluates Quickbase formulas server-side.
type FormulasClient interface {
	Run(ctx context.Context, app, table, formula string, recordID int) (string, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a qbapi.Client.
//
// RealmHostname, UserToken, and AppIDs are required; qbclient.New fails fast
// when any is missing. AppIDs is the only entry point for app identity: a
// static mapping of friendly app names to platform app IDs, supplied at
// startup and stable for the process lifetime.
//
// Retry behavior is attempt-bounded, not deadline-bounded: a request makes at
// most RetryAttempts tries with exponential backoff capped at RetryWaitMax.
// A hung connection is bounded only by HTTPTimeout.
type Config struct {
	// RealmHostname is the Quickbase realm, e.g. "acme.quickbase.com".
	RealmHostname string

	// UserToken is the QB-USER-TOKEN credential.
	UserToken string

	// AppIDs maps friendly app names to platform app IDs.
	AppIDs map[string]string

	// BaseURL overrides the API endpoint. Defaults to the public API.
	BaseURL string

	// HTTPTimeout bounds each individual HTTP attempt.
	HTTPTimeout time.Duration

	// RetryAttempts is the total attempt budget per request (default 5).
	RetryAttempts int

	// RetryWaitMin is the base backoff delay (default 1s).
	RetryWaitMin time.Duration

	// RetryWaitMax caps the backoff delay (default 64s).
	RetryWaitMax time.Duration

	// MaxConcurrency bounds in-flight chunk fetches and downloads (default 8).
	MaxConcurrency int

	// ChunkSize is the records-per-chunk for bulk export (default 1000).
	ChunkSize int

	// MaxChunkSize is the per-request ceiling ChunkSize is clamped to
	// (default 1000). The platform limit is not discoverable; treat this as
	// configuration rather than truth.
	MaxChunkSize int

	// Cache optionally configures a read-through cache for metadata
	// listings. Nil disables response caching; the in-memory schema cache
	// is always on.
	Cache *CacheConfig

	// Logger is the structured logger used by the transport and engines.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Debug enables request/response logging when a Logger is set.
	Debug bool
}

// AppCreateRequest is the body for creating an application.
type AppCreateRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	AssignToken        bool            `json:"assignToken"`
	Variables          []AppVariable   `json:"variables,omitempty"`
	SecurityProperties map[string]bool `json:"securityProperties,omitempty"`
}

// AppUpdateRequest is the body for updating an application.
type AppUpdateRequest struct {
	Name               string          `json:"name,omitempty"`
	Description        string          `json:"description,omitempty"`
	Variables          []AppVariable   `json:"variables,omitempty"`
	SecurityProperties map[string]bool `json:"securityProperties,omitempty"`
}

// AppCopyRequest is the body for copying an application.
type AppCopyRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// TableCreateRequest is the body for creating a table.
type TableCreateRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	SingularRecordName string `json:"singularRecordName,omitempty"`
	PluralRecordName   string `json:"pluralRecordName,omitempty"`
}

// TableUpdateRequest is the body for updating a table.
type TableUpdateRequest struct {
	Name               string `json:"name,omitempty"`
	SingularRecordName string `json:"singularRecordName,omitempty"`
	PluralRecordName   string `json:"pluralRecordName,omitempty"`
}

// FieldCreateRequest is the body for creating a field.
type FieldCreateRequest struct {
	Label     string `json:"label"`
	FieldType string `json:"fieldType"`
}

// RelationshipCreateRequest describes a relationship using friendly names;
// the client resolves them to table and field IDs.
type RelationshipCreateRequest struct {
	ParentTable     string
	ForeignKeyLabel string
	LookupFieldIDs  []int
	SummaryFields   []map[string]interface{}
}

// UpsertOptions tunes an Upsert call.
type UpsertOptions struct {
	// MergeFieldLabel selects the field used to match existing records.
	MergeFieldLabel string

	// FieldsToReturn lists friendly labels to include in the response.
	FieldsToReturn []string
}

// ExportOptions tunes a bulk record export.
type ExportOptions struct {
	// SelectFields restricts the projection; empty selects every field.
	SelectFields []string

	// RecordLimit truncates the requested range before partitioning.
	RecordLimit int

	// ChunkSize overrides Config.ChunkSize for this export.
	ChunkSize int

	// MaxConcurrency overrides Config.MaxConcurrency for this export.
	MaxConcurrency int
}
