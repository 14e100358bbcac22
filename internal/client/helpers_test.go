package client

import (
	"testing"
	"time"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/stretchr/testify/require"
)

const (
	testAppID   = "bqx3abc12"
	testTableID = "btx9def34"
)

// newTestClient builds a client against a fake server with fast retries.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(&qbapi.Config{
		RealmHostname: "myrealm.quickbase.com",
		UserToken:     "test-token",
		AppIDs:        map[string]string{"Payroll": testAppID},
		BaseURL:       baseURL,
		RetryAttempts: 2,
		RetryWaitMin:  time.Millisecond,
		RetryWaitMax:  5 * time.Millisecond,
	})
	require.NoError(t, err)

	return client
}

// tableListing is the canonical fake /tables body.
func tableListing() map[string]interface{} {
	return map[string]interface{}{
		"tables": []map[string]interface{}{
			{"id": testTableID, "name": "Timesheets"},
			{"id": "btx0ghi56", "name": "Employees"},
		},
	}
}

// fieldListing is the canonical fake /fields body.
func fieldListing() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": 3, "label": "Record ID#", "fieldType": "recordid"},
		{"id": 6, "label": "Status", "fieldType": "text"},
		{"id": 7, "label": "Hours", "fieldType": "numeric"},
		{"id": 8, "label": "Receipt", "fieldType": "file"},
	}
}
