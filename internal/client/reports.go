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

// ReportsClient implements qbapi.ReportsClient.
type ReportsClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
}

// NewReportsClient creates a new reports client.
func NewReportsClient(httpClient *http.Client, metadata *MetadataCache) *ReportsClient {
	return &ReportsClient{httpClient: httpClient, metadata: metadata}
}

// List implements qbapi.ReportsClient.List.
func (c *ReportsClient) List(ctx context.Context, app, table string) ([]qbapi.Report, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/reports", url.Values{"tableId": []string{tableID}})
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	var reports []qbapi.Report
	if err := json.Unmarshal(resp.Body, &reports); err != nil {
		return nil, fmt.Errorf("parsing report listing: %w", err)
	}

	return reports, nil
}

// Get implements qbapi.ReportsClient.Get.
func (c *ReportsClient) Get(ctx context.Context, app, table string, reportID int) (*qbapi.Report, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	path := "/reports/" + strconv.Itoa(reportID)

	resp, err := c.httpClient.Get(ctx, path, url.Values{"tableId": []string{tableID}})
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	var report qbapi.Report
	if err := json.Unmarshal(resp.Body, &report); err != nil {
		return nil, fmt.Errorf("parsing report response: %w", err)
	}

	return &report, nil
}

// Run implements qbapi.ReportsClient.Run.
func (c *ReportsClient) Run(ctx context.Context, app, table string, reportID int, opts *qbapi.QueryOptions) ([]qbapi.Record, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	query := url.Values{"tableId": []string{tableID}}
	if opts != nil {
		query.Set("skip", strconv.Itoa(opts.Skip))
		query.Set("top", strconv.Itoa(opts.Top))
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "/reports/" + strconv.Itoa(reportID) + "/run",
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("running report: %w", err)
	}

	var result qbapi.RecordQueryResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing report run response: %w", err)
	}

	return result.Rows(), nil
}
