package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRecordsServer serves schema endpoints and dispatches record mutations to
// the given handler.
func newRecordsServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/tables":
			_ = json.NewEncoder(writer).Encode(tableListing())
		case "/fields":
			_ = json.NewEncoder(writer).Encode(fieldListing())
		default:
			handler(writer, request)
		}
	}))
}

func TestRecordsClient_Query(t *testing.T) {
	t.Parallel()

	server := newRecordsServer(t, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/records/query", request.URL.Path)

		var body qbapi.RecordQueryRequest

		err := json.NewDecoder(request.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, testTableID, body.From)
		assert.Equal(t, []int{6, 7}, body.Select)
		assert.Equal(t, "{6.EX.'Approved'}", body.Where)

		_ = json.NewEncoder(writer).Encode(qbapi.RecordQueryResponse{
			Fields: []qbapi.FieldRef{{ID: 6, Label: "Status"}, {ID: 7, Label: "Hours"}},
			Data: []map[string]qbapi.FieldValue{
				{"6": {Value: "Approved"}, "7": {Value: 7.5}},
			},
		})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	records, err := client.Records().Query(context.Background(), "Payroll", "Timesheets",
		[]string{"Status", "Hours"}, "{6.EX.'Approved'}", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Approved", records[0]["Status"])
	assert.InEpsilon(t, 7.5, records[0]["Hours"], 0.001)
}

func TestRecordsClient_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("labels resolved to field IDs", func(t *testing.T) {
		t.Parallel()

		server := newRecordsServer(t, func(writer http.ResponseWriter, request *http.Request) {
			require.Equal(t, "/records", request.URL.Path)
			require.Equal(t, "POST", request.Method)

			var body struct {
				To           string                        `json:"to"`
				Data         []map[string]qbapi.FieldValue `json:"data"`
				MergeFieldID int                           `json:"mergeFieldId"`
			}

			err := json.NewDecoder(request.Body).Decode(&body)
			require.NoError(t, err)
			assert.Equal(t, testTableID, body.To)
			require.Len(t, body.Data, 1)
			assert.Equal(t, "Approved", body.Data[0]["6"].Value)
			assert.Equal(t, 6, body.MergeFieldID)

			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"metadata": map[string]interface{}{
					"createdRecordIds":              []int{11},
					"updatedRecordIds":              []int{},
					"unchangedRecordIds":            []int{},
					"totalNumberOfRecordsProcessed": 1,
				},
			})
		})
		defer server.Close()

		client := newTestClient(t, server.URL)

		result, err := client.Records().Upsert(context.Background(), "Payroll", "Timesheets",
			[]qbapi.Record{{"Status": "Approved"}},
			&qbapi.UpsertOptions{MergeFieldLabel: "Status"})
		require.NoError(t, err)
		assert.Equal(t, []int{11}, result.Created)
		assert.Equal(t, 1, result.Processed)
		assert.False(t, result.Partial)
	})

	t.Run("207 surfaces partial result", func(t *testing.T) {
		t.Parallel()

		server := newRecordsServer(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusMultiStatus)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"metadata": map[string]interface{}{
					"createdRecordIds":              []int{11},
					"totalNumberOfRecordsProcessed": 2,
					"lineErrors": map[string][]string{
						"2": {"Incompatible value for field with ID \"7\"."},
					},
				},
			})
		})
		defer server.Close()

		client := newTestClient(t, server.URL)

		result, err := client.Records().Upsert(context.Background(), "Payroll", "Timesheets",
			[]qbapi.Record{{"Status": "Approved"}, {"Hours": "x"}}, nil)
		require.Error(t, err)

		partialErr := &qbapi.PartialWriteError{}
		require.True(t, errors.As(err, &partialErr))
		assert.Equal(t, 2, partialErr.Processed)

		require.NotNil(t, result)
		assert.True(t, result.Partial)
		assert.Equal(t, []int{11}, result.Created)
		assert.Len(t, result.LineErrors, 1)
	})

	t.Run("unknown label fails before the request", func(t *testing.T) {
		t.Parallel()

		server := newRecordsServer(t, func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no records request expected")
		})
		defer server.Close()

		client := newTestClient(t, server.URL)

		_, err := client.Records().Upsert(context.Background(), "Payroll", "Timesheets",
			[]qbapi.Record{{"Salary": 1}}, nil)
		require.Error(t, err)
		assert.True(t, qbapi.IsInput(err))
	})
}

func TestRecordsClient_DeleteWhere(t *testing.T) {
	t.Parallel()

	server := newRecordsServer(t, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/records", request.URL.Path)
		require.Equal(t, "DELETE", request.Method)

		var body map[string]string

		err := json.NewDecoder(request.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, testTableID, body["from"])
		assert.Equal(t, "{6.EX.'Rejected'}", body["where"])

		_ = json.NewEncoder(writer).Encode(map[string]int{"numberDeleted": 7})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	deleted, err := client.Records().DeleteWhere(context.Background(), "Payroll", "Timesheets", "{6.EX.'Rejected'}")
	require.NoError(t, err)
	assert.Equal(t, 7, deleted)
}
