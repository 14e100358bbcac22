// Package client provides the concrete implementation of the qbapi.Client
// interface: resource clients, the metadata cache, and the concurrent record
// export and attachment download engines.
package client

import (
	"github.com/fieldworks-io/qbapi-client/internal/constants"
	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// Client implements the qbapi.Client interface.
type Client struct {
	httpClient *http.Client
	metadata   *MetadataCache
	logger     qbapi.Logger

	// Resource clients
	apps          qbapi.AppsClient
	tables        qbapi.TablesClient
	fields        qbapi.FieldsClient
	relationships qbapi.RelationshipsClient
	records       qbapi.RecordsClient
	reports       qbapi.ReportsClient
	files         qbapi.FilesClient
	formulas      qbapi.FormulasClient

	maxConcurrency int
	chunkSize      int
	maxChunkSize   int
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *qbapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryAttempts > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryAttempts, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new Quickbase API client. Config validation and endpoint
// normalization are the facade's job; by the time config reaches here it is
// complete.
func New(config *qbapi.Config) (*Client, error) {
	if config == nil {
		return nil, qbapi.ErrConfigRequired
	}

	if config.RealmHostname == "" {
		return nil, qbapi.ErrRealmHostnameRequired
	}

	if config.UserToken == "" {
		return nil, qbapi.ErrUserTokenRequired
	}

	if len(config.AppIDs) == 0 {
		return nil, qbapi.ErrAppIDsRequired
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(baseURL, config.RealmHostname, config.UserToken, httpOpts...)

	logger := config.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	var responseCache qbapi.Cache

	if config.Cache != nil {
		cache, err := qbapi.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, err
		}

		responseCache = cache
	}

	client := &Client{
		httpClient:     httpClient,
		logger:         logger,
		maxConcurrency: orDefault(config.MaxConcurrency, constants.DefaultMaxConcurrency),
		chunkSize:      orDefault(config.ChunkSize, constants.DefaultChunkSize),
		maxChunkSize:   orDefault(config.MaxChunkSize, constants.MaxChunkSize),
	}

	client.metadata = NewMetadataCache(httpClient, config.AppIDs, responseCache, logger)
	client.initializeResourceClients()

	return client, nil
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}

	return fallback
}

// initializeResourceClients sets up all resource clients.
func (c *Client) initializeResourceClients() {
	c.apps = NewAppsClient(c.httpClient, c.metadata)
	c.tables = NewTablesClient(c.httpClient, c.metadata)
	c.fields = NewFieldsClient(c.httpClient, c.metadata)
	c.relationships = NewRelationshipsClient(c.httpClient, c.metadata)
	c.records = NewRecordsClient(c.httpClient, c.metadata, c.logger, c.maxConcurrency, c.chunkSize, c.maxChunkSize)
	c.reports = NewReportsClient(c.httpClient, c.metadata)
	c.files = NewFilesClient(c.httpClient, c.metadata, c.logger, c.maxConcurrency)
	c.formulas = NewFormulasClient(c.httpClient, c.metadata)
}

// Metadata returns the name-to-ID resolution layer.
func (c *Client) Metadata() qbapi.MetadataResolver { return c.metadata }

// Apps returns the apps resource client.
func (c *Client) Apps() qbapi.AppsClient { return c.apps }

// Tables returns the tables resource client.
func (c *Client) Tables() qbapi.TablesClient { return c.tables }

// Fields returns the fields resource client.
func (c *Client) Fields() qbapi.FieldsClient { return c.fields }

// Relationships returns the relationships resource client.
func (c *Client) Relationships() qbapi.RelationshipsClient { return c.relationships }

// Records returns the records resource client.
func (c *Client) Records() qbapi.RecordsClient { return c.records }

// Reports returns the reports resource client.
func (c *Client) Reports() qbapi.ReportsClient { return c.reports }

// Files returns the file attachments resource client.
func (c *Client) Files() qbapi.FilesClient { return c.files }

// Formulas returns the formulas resource client.
func (c *Client) Formulas() qbapi.FormulasClient { return c.formulas }

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
