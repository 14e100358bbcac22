package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// RecordsClient implements qbapi.RecordsClient.
type RecordsClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
	logger     qbapi.Logger

	maxConcurrency int
	chunkSize      int
	maxChunkSize   int
}

// NewRecordsClient creates a new records client.
func NewRecordsClient(httpClient *http.Client, metadata *MetadataCache, logger qbapi.Logger,
	maxConcurrency, chunkSize, maxChunkSize int,
) *RecordsClient {
	return &RecordsClient{
		httpClient:     httpClient,
		metadata:       metadata,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		chunkSize:      chunkSize,
		maxChunkSize:   maxChunkSize,
	}
}

// buildQueryRequest resolves friendly labels into a wire request body.
func (c *RecordsClient) buildQueryRequest(ctx context.Context, app, table string,
	selectFields []string, where string, opts *qbapi.QueryOptions,
) (*qbapi.RecordQueryRequest, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	fieldIDs := make([]int, 0, len(selectFields))

	for _, label := range selectFields {
		fieldID, err := c.metadata.FieldID(ctx, app, table, label)
		if err != nil {
			return nil, err
		}

		fieldIDs = append(fieldIDs, fieldID)
	}

	return &qbapi.RecordQueryRequest{
		From:    tableID,
		Select:  fieldIDs,
		Where:   where,
		Options: opts,
	}, nil
}

// runQuery posts one records/query page and converts it to label-keyed rows.
func (c *RecordsClient) runQuery(ctx context.Context, request *qbapi.RecordQueryRequest) ([]qbapi.Record, error) {
	resp, err := c.httpClient.Post(ctx, "/records/query", request)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	var result qbapi.RecordQueryResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing query response: %w", err)
	}

	return result.Rows(), nil
}

// Query implements qbapi.RecordsClient.Query.
func (c *RecordsClient) Query(ctx context.Context, app, table string,
	selectFields []string, where string, opts *qbapi.QueryOptions,
) ([]qbapi.Record, error) {
	request, err := c.buildQueryRequest(ctx, app, table, selectFields, where, opts)
	if err != nil {
		return nil, err
	}

	return c.runQuery(ctx, request)
}

// Upsert implements qbapi.RecordsClient.Upsert. Records arrive keyed by
// friendly labels and leave keyed by field IDs. A 207 response returns both
// the structured result and a *qbapi.PartialWriteError.
func (c *RecordsClient) Upsert(ctx context.Context, app, table string,
	records []qbapi.Record, opts *qbapi.UpsertOptions,
) (*qbapi.UpsertResult, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	data := make([]map[string]qbapi.FieldValue, 0, len(records))

	for _, record := range records {
		row := make(map[string]qbapi.FieldValue, len(record))

		for label, value := range record {
			fieldID, err := c.metadata.FieldID(ctx, app, table, label)
			if err != nil {
				return nil, err
			}

			row[fmt.Sprintf("%d", fieldID)] = qbapi.FieldValue{Value: value}
		}

		data = append(data, row)
	}

	body := map[string]interface{}{
		"to":   tableID,
		"data": data,
	}

	if opts != nil && opts.MergeFieldLabel != "" {
		mergeFieldID, err := c.metadata.FieldID(ctx, app, table, opts.MergeFieldLabel)
		if err != nil {
			return nil, err
		}

		body["mergeFieldId"] = mergeFieldID
	}

	if opts != nil && len(opts.FieldsToReturn) > 0 {
		returnIDs := make([]int, 0, len(opts.FieldsToReturn))

		for _, label := range opts.FieldsToReturn {
			fieldID, err := c.metadata.FieldID(ctx, app, table, label)
			if err != nil {
				return nil, err
			}

			returnIDs = append(returnIDs, fieldID)
		}

		body["fieldsToReturn"] = returnIDs
	}

	resp, err := c.httpClient.Post(ctx, "/records", body)
	if err != nil {
		return nil, fmt.Errorf("upserting records: %w", err)
	}

	var wire struct {
		Metadata struct {
			CreatedRecordIDs              []int               `json:"createdRecordIds"`
			UpdatedRecordIDs              []int               `json:"updatedRecordIds"`
			UnchangedRecordIDs            []int               `json:"unchangedRecordIds"`
			TotalNumberOfRecordsProcessed int                 `json:"totalNumberOfRecordsProcessed"`
			LineErrors                    map[string][]string `json:"lineErrors"`
		} `json:"metadata"`
	}

	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("parsing upsert response: %w", err)
	}

	result := &qbapi.UpsertResult{
		Created:    wire.Metadata.CreatedRecordIDs,
		Updated:    wire.Metadata.UpdatedRecordIDs,
		Unchanged:  wire.Metadata.UnchangedRecordIDs,
		Processed:  wire.Metadata.TotalNumberOfRecordsProcessed,
		LineErrors: wire.Metadata.LineErrors,
	}

	if resp.StatusCode == 207 {
		result.Partial = true

		c.logger.Warn("Upsert partially failed", map[string]interface{}{
			"table":     table,
			"processed": result.Processed,
			"rejected":  len(result.LineErrors),
		})

		return result, &qbapi.PartialWriteError{
			Processed:  result.Processed,
			LineErrors: result.LineErrors,
		}
	}

	return result, nil
}

// DeleteWhere implements qbapi.RecordsClient.DeleteWhere.
func (c *RecordsClient) DeleteWhere(ctx context.Context, app, table, where string) (int, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return 0, err
	}

	body := map[string]string{
		"from":  tableID,
		"where": where,
	}

	resp, err := c.httpClient.Delete(ctx, "/records", body)
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}

	var result struct {
		NumberDeleted int `json:"numberDeleted"`
	}

	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return 0, fmt.Errorf("parsing delete response: %w", err)
	}

	return result.NumberDeleted, nil
}
