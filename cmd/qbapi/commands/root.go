// Package commands implements the qbapi CLI command tree.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/fieldworks-io/qbapi-client/pkg/qbclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// createClient builds a client from viper-resolved configuration (flags,
// config file, QB_* environment).
func createClient() (qbapi.Client, error) {
	realm := viper.GetString("realm")
	token := viper.GetString("token")
	rawApps := viper.GetString("apps")

	if realm == "" || token == "" || rawApps == "" {
		// Fall back to .env / environment configuration
		return qbclient.NewFromEnv()
	}

	var appIDs map[string]string

	err := json.Unmarshal([]byte(rawApps), &appIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", qbapi.ErrInvalidAppIDs, err)
	}

	config := &qbapi.Config{
		RealmHostname: realm,
		UserToken:     token,
		AppIDs:        appIDs,
	}

	if viper.GetBool("verbose") {
		config.Logger = &stderrLogger{}
		config.Debug = true
	}

	return qbclient.New(config)
}

// renderStructured writes data as JSON or YAML to stdout. It returns false
// when the configured output format is the table default.
func renderStructured(data interface{}) (bool, error) {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return true, encoder.Encode(data)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)

		return true, encoder.Encode(data)
	default:
		return false, nil
	}
}

// stderrLogger is a minimal structured logger for verbose CLI runs.
type stderrLogger struct{}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s", level, msg)

	for key, value := range fields {
		fmt.Fprintf(os.Stderr, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr)
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }
