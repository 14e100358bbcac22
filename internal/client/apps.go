package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// AppsClient implements qbapi.AppsClient.
type AppsClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
}

// NewAppsClient creates a new apps client.
func NewAppsClient(httpClient *http.Client, metadata *MetadataCache) *AppsClient {
	return &AppsClient{httpClient: httpClient, metadata: metadata}
}

// Create implements qbapi.AppsClient.Create.
func (c *AppsClient) Create(ctx context.Context, request *qbapi.AppCreateRequest) (*qbapi.App, error) {
	resp, err := c.httpClient.Post(ctx, "/apps", request)
	if err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	var app qbapi.App
	if err := json.Unmarshal(resp.Body, &app); err != nil {
		return nil, fmt.Errorf("parsing app response: %w", err)
	}

	return &app, nil
}

// Get implements qbapi.AppsClient.Get.
func (c *AppsClient) Get(ctx context.Context, app string) (*qbapi.App, error) {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/apps/"+appID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting app: %w", err)
	}

	var result qbapi.App
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing app response: %w", err)
	}

	return &result, nil
}

// Update implements qbapi.AppsClient.Update.
func (c *AppsClient) Update(ctx context.Context, app string, request *qbapi.AppUpdateRequest) (*qbapi.App, error) {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/apps/"+appID, request)
	if err != nil {
		return nil, fmt.Errorf("updating app: %w", err)
	}

	var result qbapi.App
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing app response: %w", err)
	}

	return &result, nil
}

// Delete implements qbapi.AppsClient.Delete.
func (c *AppsClient) Delete(ctx context.Context, app string) error {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, "/apps/"+appID, nil)
	if err != nil {
		return fmt.Errorf("deleting app: %w", err)
	}

	return nil
}

// Copy implements qbapi.AppsClient.Copy.
func (c *AppsClient) Copy(ctx context.Context, app string, request *qbapi.AppCopyRequest) (*qbapi.App, error) {
	appID, err := c.metadata.AppID(app)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/apps/"+appID+"/copy", request)
	if err != nil {
		return nil, fmt.Errorf("copying app: %w", err)
	}

	var result qbapi.App
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing app response: %w", err)
	}

	return &result, nil
}
