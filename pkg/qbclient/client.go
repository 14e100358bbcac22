// Package qbclient provides the main entry point for creating Quickbase API clients
package qbclient

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fieldworks-io/qbapi-client/internal/client"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/joho/godotenv"
)

// Environment variables read by NewFromEnv.
const (
	EnvRealmHostname = "QB_REALM_HOSTNAME"
	EnvUserToken     = "QB_USER_TOKEN"
	EnvAppIDs        = "QB_APP_IDS"
)

// New creates a new Quickbase API client from config.
func New(config *qbapi.Config) (qbapi.Client, error) {
	if config == nil {
		return nil, qbapi.ErrConfigRequired
	}

	if config.RealmHostname == "" {
		return nil, qbapi.ErrRealmHostnameRequired
	}

	if config.UserToken == "" {
		return nil, qbapi.ErrUserTokenRequired
	}

	if len(config.AppIDs) == 0 {
		return nil, qbapi.ErrAppIDsRequired
	}

	// Normalize the realm so callers can pass either form
	config.RealmHostname = strings.TrimPrefix(strings.TrimPrefix(config.RealmHostname, "https://"), "http://")
	config.RealmHostname = strings.TrimSuffix(config.RealmHostname, "/")

	if config.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	apiClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// NewWithToken creates a client for a realm and token with an app ID mapping,
// using defaults for everything else.
func NewWithToken(realmHostname, userToken string, appIDs map[string]string) (qbapi.Client, error) {
	return New(&qbapi.Config{
		RealmHostname: realmHostname,
		UserToken:     userToken,
		AppIDs:        appIDs,
	})
}

// NewFromEnv creates a client from environment variables, loading a .env file
// first when one exists. QB_APP_IDS holds a JSON object mapping friendly app
// names to app IDs.
func NewFromEnv() (qbapi.Client, error) {
	_ = godotenv.Load()

	realmHostname := os.Getenv(EnvRealmHostname)
	if realmHostname == "" {
		return nil, qbapi.ErrRealmHostnameRequired
	}

	userToken := os.Getenv(EnvUserToken)
	if userToken == "" {
		return nil, qbapi.ErrUserTokenRequired
	}

	rawAppIDs := os.Getenv(EnvAppIDs)
	if rawAppIDs == "" {
		return nil, qbapi.ErrAppIDsRequired
	}

	var appIDs map[string]string

	err := json.Unmarshal([]byte(rawAppIDs), &appIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", qbapi.ErrInvalidAppIDs, err)
	}

	return New(&qbapi.Config{
		RealmHostname: realmHostname,
		UserToken:     userToken,
		AppIDs:        appIDs,
	})
}
