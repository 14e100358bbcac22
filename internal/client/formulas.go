package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldworks-io/qbapi-client/internal/http"
)

// FormulasClient implements qbapi.FormulasClient.
type FormulasClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
}

// NewFormulasClient creates a new formulas client.
func NewFormulasClient(httpClient *http.Client, metadata *MetadataCache) *FormulasClient {
	return &FormulasClient{httpClient: httpClient, metadata: metadata}
}

// Run implements qbapi.FormulasClient.Run. recordID may be zero for
// table-level formulas.
func (c *FormulasClient) Run(ctx context.Context, app, table, formula string, recordID int) (string, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return "", err
	}

	body := map[string]interface{}{
		"from":    tableID,
		"formula": formula,
	}

	if recordID > 0 {
		body["rid"] = recordID
	}

	resp, err := c.httpClient.Post(ctx, "/formula/run", body)
	if err != nil {
		return "", fmt.Errorf("running formula: %w", err)
	}

	var result struct {
		Result string `json:"result"`
	}

	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("parsing formula response: %w", err)
	}

	return result.Result, nil
}
