package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSchemaServer serves the canonical schema and dispatches everything else
// to handler.
func newSchemaServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.URL.Path == "/tables" && request.Method == "GET":
			_ = json.NewEncoder(writer).Encode(tableListing())
		case request.URL.Path == "/fields" && request.Method == "GET":
			_ = json.NewEncoder(writer).Encode(fieldListing())
		default:
			handler(writer, request)
		}
	}))
}

func TestAppsClient_Get(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/apps/"+testAppID, request.URL.Path)
		_ = json.NewEncoder(writer).Encode(qbapi.App{ID: testAppID, Name: "Payroll"})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	app, err := client.Apps().Get(context.Background(), "payroll")
	require.NoError(t, err)
	assert.Equal(t, testAppID, app.ID)
	assert.Equal(t, "Payroll", app.Name)
}

func TestAppsClient_Copy(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/apps/"+testAppID+"/copy", request.URL.Path)
		assert.Equal(t, "POST", request.Method)

		var body qbapi.AppCopyRequest

		err := json.NewDecoder(request.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, "Payroll Copy", body.Name)

		_ = json.NewEncoder(writer).Encode(qbapi.App{ID: "bqxnew9.99", Name: body.Name})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	app, err := client.Apps().Copy(context.Background(), "Payroll", &qbapi.AppCopyRequest{Name: "Payroll Copy"})
	require.NoError(t, err)
	assert.Equal(t, "Payroll Copy", app.Name)
}

func TestTablesClient_CreateAndUpdate(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.URL.Path == "/tables" && request.Method == "POST":
			assert.Equal(t, testAppID, request.URL.Query().Get("appId"))
			_ = json.NewEncoder(writer).Encode(qbapi.Table{ID: "btxnew", Name: "Invoices"})
		case request.URL.Path == "/tables/"+testTableID && request.Method == "POST":
			_ = json.NewEncoder(writer).Encode(qbapi.Table{ID: testTableID, Name: "Renamed"})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	table, err := client.Tables().Create(ctx, "Payroll", &qbapi.TableCreateRequest{Name: "Invoices"})
	require.NoError(t, err)
	assert.Equal(t, "btxnew", table.ID)

	updated, err := client.Tables().Update(ctx, "Payroll", "Timesheets", &qbapi.TableUpdateRequest{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = client.Tables().Update(ctx, "Payroll", "Timesheets", &qbapi.TableUpdateRequest{})
	require.ErrorIs(t, err, qbapi.ErrNoUpdateParameters)
}

func TestFieldsClient_DeleteResolvesLabels(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/fields", request.URL.Path)
		require.Equal(t, "DELETE", request.Method)
		assert.Equal(t, testTableID, request.URL.Query().Get("tableId"))

		var body map[string][]int

		err := json.NewDecoder(request.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, []int{6, 7}, body["fieldIds"])

		_ = json.NewEncoder(writer).Encode(map[string][]int{"deletedFieldIds": {6, 7}})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Fields().Delete(context.Background(), "Payroll", "Timesheets", []string{"Status", "Hours"})
	require.NoError(t, err)
}

func TestRelationshipsClient_Delete(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.URL.Path == "/tables/"+testTableID+"/relationships":
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"relationships": []map[string]interface{}{
					{
						"id":              42,
						"parentTableId":   "btx0ghi56",
						"childTableId":    testTableID,
						"foreignKeyField": map[string]interface{}{"id": 9, "label": "Related Employee"},
					},
				},
			})
		case request.URL.Path == "/tables/"+testTableID+"/relationship/42" && request.Method == "DELETE":
			writer.WriteHeader(http.StatusOK)
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	relationshipID, err := client.Relationships().Delete(ctx, "Payroll", "Timesheets", "Related Employee")
	require.NoError(t, err)
	assert.Equal(t, 42, relationshipID)

	_, err = client.Relationships().Delete(ctx, "Payroll", "Timesheets", "Nope")
	require.Error(t, err)
	assert.True(t, qbapi.IsInput(err))
}

func TestReportsClient_Run(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/reports/5/run", request.URL.Path)
		assert.Equal(t, testTableID, request.URL.Query().Get("tableId"))
		assert.Equal(t, "10", request.URL.Query().Get("skip"))

		_ = json.NewEncoder(writer).Encode(qbapi.RecordQueryResponse{
			Fields: []qbapi.FieldRef{{ID: 6, Label: "Status"}},
			Data:   []map[string]qbapi.FieldValue{{"6": {Value: "Approved"}}},
		})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	records, err := client.Reports().Run(context.Background(), "Payroll", "Timesheets", 5,
		&qbapi.QueryOptions{Skip: 10, Top: 100})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Approved", records[0]["Status"])
}

func TestFormulasClient_Run(t *testing.T) {
	t.Parallel()

	server := newSchemaServer(t, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/formula/run", request.URL.Path)

		var body map[string]interface{}

		err := json.NewDecoder(request.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, testTableID, body["from"])
		assert.InEpsilon(t, 17.0, body["rid"], 0.001)

		_ = json.NewEncoder(writer).Encode(map[string]string{"result": "34"})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.Formulas().Run(context.Background(), "Payroll", "Timesheets", "[Hours]*2", 17)
	require.NoError(t, err)
	assert.Equal(t, "34", result)
}
