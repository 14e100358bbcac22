package qbclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/fieldworks-io/qbapi-client/pkg/qbclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *qbapi.Config {
	return &qbapi.Config{
		RealmHostname: "myrealm.quickbase.com",
		UserToken:     "test-token",
		AppIDs:        map[string]string{"Payroll": "bqx3abc12"},
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := qbclient.New(nil)
		require.ErrorIs(t, err, qbapi.ErrConfigRequired)
	})

	t.Run("missing realm", func(t *testing.T) {
		t.Parallel()

		config := validConfig()
		config.RealmHostname = ""

		_, err := qbclient.New(config)
		require.ErrorIs(t, err, qbapi.ErrRealmHostnameRequired)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		config := validConfig()
		config.UserToken = ""

		_, err := qbclient.New(config)
		require.ErrorIs(t, err, qbapi.ErrUserTokenRequired)
	})

	t.Run("missing app IDs", func(t *testing.T) {
		t.Parallel()

		config := validConfig()
		config.AppIDs = nil

		_, err := qbclient.New(config)
		require.ErrorIs(t, err, qbapi.ErrAppIDsRequired)
	})
}

func TestNew_NormalizesRealm(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "myrealm.quickbase.com", request.Header.Get("QB-Realm-Hostname"))
		assert.Equal(t, "QB-USER-TOKEN test-token", request.Header.Get("Authorization"))

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"tables": []map[string]string{{"id": "btx1", "name": "Timesheets"}},
		})
	}))
	defer server.Close()

	config := validConfig()
	config.RealmHostname = "https://myrealm.quickbase.com/"
	config.BaseURL = server.URL + "/"

	client, err := qbclient.New(config)
	require.NoError(t, err)

	tables, err := client.Metadata().Tables(context.Background(), "Payroll")
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := qbclient.NewWithToken("myrealm.quickbase.com", "test-token",
		map[string]string{"Payroll": "bqx3abc12"})
	require.NoError(t, err)
	require.NotNil(t, client)

	name, err := client.Metadata().ResolveApp("payroll")
	require.NoError(t, err)
	assert.Equal(t, "Payroll", name)
}

func TestNewFromEnv(t *testing.T) {
	t.Run("complete environment", func(t *testing.T) {
		t.Setenv(qbclient.EnvRealmHostname, "myrealm.quickbase.com")
		t.Setenv(qbclient.EnvUserToken, "test-token")
		t.Setenv(qbclient.EnvAppIDs, `{"Payroll":"bqx3abc12"}`)

		client, err := qbclient.NewFromEnv()
		require.NoError(t, err)

		appID, err := client.Metadata().AppID("Payroll")
		require.NoError(t, err)
		assert.Equal(t, "bqx3abc12", appID)
	})

	t.Run("missing realm", func(t *testing.T) {
		t.Setenv(qbclient.EnvRealmHostname, "")
		t.Setenv(qbclient.EnvUserToken, "test-token")
		t.Setenv(qbclient.EnvAppIDs, `{"Payroll":"bqx3abc12"}`)

		_, err := qbclient.NewFromEnv()
		require.ErrorIs(t, err, qbapi.ErrRealmHostnameRequired)
	})

	t.Run("malformed app IDs", func(t *testing.T) {
		t.Setenv(qbclient.EnvRealmHostname, "myrealm.quickbase.com")
		t.Setenv(qbclient.EnvUserToken, "test-token")
		t.Setenv(qbclient.EnvAppIDs, "Payroll=bqx3abc12")

		_, err := qbclient.NewFromEnv()
		require.ErrorIs(t, err, qbapi.ErrInvalidAppIDs)
	})
}
