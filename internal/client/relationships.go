package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// RelationshipsClient implements qbapi.RelationshipsClient.
type RelationshipsClient struct {
	httpClient *http.Client
	metadata   *MetadataCache
}

// NewRelationshipsClient creates a new relationships client.
func NewRelationshipsClient(httpClient *http.Client, metadata *MetadataCache) *RelationshipsClient {
	return &RelationshipsClient{httpClient: httpClient, metadata: metadata}
}

// List implements qbapi.RelationshipsClient.List.
func (c *RelationshipsClient) List(ctx context.Context, app, table string) ([]qbapi.Relationship, error) {
	return c.metadata.Relationships(ctx, app, table)
}

// Create implements qbapi.RelationshipsClient.Create. The request carries
// friendly names; parent table and foreign key label are resolved here.
func (c *RelationshipsClient) Create(ctx context.Context, app, table string, request *qbapi.RelationshipCreateRequest) (*qbapi.Relationship, error) {
	childID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	parentID, err := c.metadata.TableID(ctx, app, request.ParentTable)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"parentTableId": parentID,
	}

	if request.ForeignKeyLabel != "" {
		body["foreignKeyField"] = map[string]string{"label": request.ForeignKeyLabel}
	}

	if len(request.LookupFieldIDs) > 0 {
		body["lookupFieldIds"] = request.LookupFieldIDs
	}

	if len(request.SummaryFields) > 0 {
		body["summaryFields"] = request.SummaryFields
	}

	resp, err := c.httpClient.Post(ctx, "/tables/"+childID+"/relationship", body)
	if err != nil {
		return nil, fmt.Errorf("creating relationship: %w", err)
	}

	var relationship qbapi.Relationship
	if err := json.Unmarshal(resp.Body, &relationship); err != nil {
		return nil, fmt.Errorf("parsing relationship response: %w", err)
	}

	return &relationship, nil
}

// Delete implements qbapi.RelationshipsClient.Delete. The child reference
// field label is resolved to the relationship whose foreign key field carries
// that label; the relationship ID is returned.
func (c *RelationshipsClient) Delete(ctx context.Context, app, table, referenceFieldLabel string) (int, error) {
	childID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return 0, err
	}

	relationships, err := c.metadata.Relationships(ctx, app, table)
	if err != nil {
		return 0, err
	}

	relationshipID := 0
	found := false

	for _, rel := range relationships {
		if rel.ForeignKeyField != nil && rel.ForeignKeyField.Label == referenceFieldLabel {
			relationshipID = rel.ID
			found = true

			break
		}
	}

	if !found {
		available := make([]string, 0, len(relationships))
		for _, rel := range relationships {
			if rel.ForeignKeyField != nil {
				available = append(available, rel.ForeignKeyField.Label)
			}
		}

		return 0, &qbapi.InputError{Kind: "field", Name: referenceFieldLabel, Available: available}
	}

	path := "/tables/" + childID + "/relationship/" + strconv.Itoa(relationshipID)

	_, err = c.httpClient.Do(ctx, &http.Request{Method: "DELETE", Path: path})
	if err != nil {
		return 0, fmt.Errorf("deleting relationship: %w", err)
	}

	return relationshipID, nil
}
