package qbapi_test

import (
	"encoding/json"
	"testing"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableList_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("wrapped shape", func(t *testing.T) {
		t.Parallel()

		var list qbapi.TableList

		err := json.Unmarshal([]byte(`{"tables":[{"id":"bqx1","name":"Timesheets"}]}`), &list)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Timesheets", list[0].Name)
	})

	t.Run("bare list", func(t *testing.T) {
		t.Parallel()

		var list qbapi.TableList

		err := json.Unmarshal([]byte(`[{"id":"bqx1","name":"Timesheets"}]`), &list)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "bqx1", list[0].ID)
	})

	t.Run("unexpected shape", func(t *testing.T) {
		t.Parallel()

		var list qbapi.TableList

		err := json.Unmarshal([]byte(`{"surprise":true}`), &list)
		require.ErrorIs(t, err, qbapi.ErrUnexpectedShape)
	})
}

func TestFieldList_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("wrapped shape", func(t *testing.T) {
		t.Parallel()

		var list qbapi.FieldList

		err := json.Unmarshal([]byte(`{"fields":[{"id":6,"label":"Status","fieldType":"text"}]}`), &list)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 6, list[0].ID)
	})

	t.Run("bare list", func(t *testing.T) {
		t.Parallel()

		var list qbapi.FieldList

		err := json.Unmarshal([]byte(`[{"id":6,"label":"Status","fieldType":"text"}]`), &list)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "text", list[0].FieldType)
	})
}

func TestRecordQueryResponse_Rows(t *testing.T) {
	t.Parallel()

	response := qbapi.RecordQueryResponse{
		Fields: []qbapi.FieldRef{
			{ID: 3, Label: "Record ID#"},
			{ID: 6, Label: "Status"},
		},
		Data: []map[string]qbapi.FieldValue{
			{"3": {Value: float64(1)}, "6": {Value: "Approved"}},
			{"3": {Value: float64(2)}},
		},
	}

	rows := response.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Approved", rows[0]["Status"])
	assert.InEpsilon(t, 1.0, rows[0]["Record ID#"], 0.001)

	// Missing cells surface as nil under the label
	assert.Contains(t, rows[1], "Status")
	assert.Nil(t, rows[1]["Status"])
}
