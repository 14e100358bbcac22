package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// FieldsClient implements qbapi.FieldsClient.
type FieldsClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
}

// NewFieldsClient creates a new fields client.
func NewFieldsClient(httpClient *http.Client, metadata *MetadataCache) *FieldsClient {
	return &FieldsClient{httpClient: httpClient, metadata: metadata}
}

// Create implements qbapi.FieldsClient.Create.
func (c *FieldsClient) Create(ctx context.Context, app, table string, request *qbapi.FieldCreateRequest) (*qbapi.Field, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "/fields",
		Query:  url.Values{"tableId": []string{tableID}},
		Body:   request,
	})
	if err != nil {
		return nil, fmt.Errorf("creating field: %w", err)
	}

	var field qbapi.Field
	if err := json.Unmarshal(resp.Body, &field); err != nil {
		return nil, fmt.Errorf("parsing field response: %w", err)
	}

	return &field, nil
}

// Get implements qbapi.FieldsClient.Get.
func (c *FieldsClient) Get(ctx context.Context, app, table string, fieldID int) (*qbapi.Field, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	path := "/fields/" + strconv.Itoa(fieldID)

	resp, err := c.httpClient.Get(ctx, path, url.Values{"tableId": []string{tableID}})
	if err != nil {
		return nil, fmt.Errorf("getting field: %w", err)
	}

	var field qbapi.Field
	if err := json.Unmarshal(resp.Body, &field); err != nil {
		return nil, fmt.Errorf("parsing field response: %w", err)
	}

	return &field, nil
}

// List implements qbapi.FieldsClient.List.
func (c *FieldsClient) List(ctx context.Context, app, table string) ([]qbapi.Field, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/fields", url.Values{"tableId": []string{tableID}})
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}

	var list qbapi.FieldList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("parsing field listing: %w", err)
	}

	return list, nil
}

// Delete implements qbapi.FieldsClient.Delete. Labels are resolved to field
// IDs before the call; an unknown label fails the whole request.
func (c *FieldsClient) Delete(ctx context.Context, app, table string, labels []string) error {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return err
	}

	fieldIDs := make([]int, 0, len(labels))

	for _, label := range labels {
		fieldID, err := c.metadata.FieldID(ctx, app, table, label)
		if err != nil {
			return err
		}

		fieldIDs = append(fieldIDs, fieldID)
	}

	_, err = c.httpClient.Do(ctx, &http.Request{
		Method: "DELETE",
		Path:   "/fields",
		Query:  url.Values{"tableId": []string{tableID}},
		Body:   map[string][]int{"fieldIds": fieldIDs},
	})
	if err != nil {
		return fmt.Errorf("deleting fields: %w", err)
	}

	return nil
}
