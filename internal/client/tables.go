package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// TablesClient implements qbapi.TablesClient.
type TablesClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
}

// NewTablesClient creates a new tables client.
func NewTablesClient(httpClient *http.Client, metadata *MetadataCache) *TablesClient {
	return &TablesClient{httpClient: httpClient, metadata: metadata}
}

// Create implements qbapi.TablesClient.Create.
func (c *TablesClient) Create(ctx context.Context, app string, request *qbapi.TableCreateRequest) (*qbapi.Table, error) {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "/tables",
		Query:  url.Values{"appId": []string{appID}},
		Body:   request,
	})
	if err != nil {
		return nil, fmt.Errorf("creating table: %w", err)
	}

	var table qbapi.Table
	if err := json.Unmarshal(resp.Body, &table); err != nil {
		return nil, fmt.Errorf("parsing table response: %w", err)
	}

	return &table, nil
}

// Get implements qbapi.TablesClient.Get.
func (c *TablesClient) Get(ctx context.Context, app, table string) (*qbapi.Table, error) {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return nil, err
	}

	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/tables/"+tableID, url.Values{"appId": []string{appID}})
	if err != nil {
		return nil, fmt.Errorf("getting table: %w", err)
	}

	var result qbapi.Table
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing table response: %w", err)
	}

	return &result, nil
}

// List implements qbapi.TablesClient.List.
func (c *TablesClient) List(ctx context.Context, app string) ([]qbapi.Table, error) {
	return c.metadata.Tables(ctx, app)
}

// Update implements qbapi.TablesClient.Update.
func (c *TablesClient) Update(ctx context.Context, app, table string, request *qbapi.TableUpdateRequest) (*qbapi.Table, error) {
	if request == nil || (request.Name == "" && request.SingularRecordName == "" && request.PluralRecordName == "") {
		return nil, qbapi.ErrNoUpdateParameters
	}

	appID, err := c.metadata.AppID(app)
	if err != nil {
		return nil, err
	}

	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "/tables/" + tableID,
		Query:  url.Values{"appId": []string{appID}},
		Body:   request,
	})
	if err != nil {
		return nil, fmt.Errorf("updating table: %w", err)
	}

	var result qbapi.Table
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing table response: %w", err)
	}

	return &result, nil
}

// Delete implements qbapi.TablesClient.Delete.
func (c *TablesClient) Delete(ctx context.Context, app, table string) error {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return err
	}

	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Do(ctx, &http.Request{
		Method: "DELETE",
		Path:   "/tables/" + tableID,
		Query:  url.Values{"appId": []string{appID}},
	})
	if err != nil {
		return fmt.Errorf("deleting table: %w", err)
	}

	return nil
}
