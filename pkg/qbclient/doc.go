// Package qbclient provides the primary entry point for constructing a
// Quickbase API client that implements the qbapi.Client interface.
//
// It layers configuration, the retrying HTTP transport, authentication
// headers, and metadata resolution on top of the resource interfaces and
// types defined in the qbapi package. Most applications should import
// qbclient to build a client, then use the returned qbapi.Client to access
// resource-specific clients, for example Records(), Tables(), Files().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fieldworks-io/qbapi-client/pkg/qbapi"
//	  "github.com/fieldworks-io/qbapi-client/pkg/qbclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := qbclient.New(&qbapi.Config{
//	    RealmHostname: "acme.quickbase.com",
//	    UserToken:     "b12x34_abc_...",
//	    AppIDs:        map[string]string{"Payroll": "bqx3abc12"},
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  records, err := cli.Records().ExportAll(ctx, "Payroll", "Timesheets", "", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = records
//	}
//
// # Environment configuration
//
// NewFromEnv builds a client from QB_REALM_HOSTNAME, QB_USER_TOKEN, and
// QB_APP_IDS (a JSON object mapping friendly app names to app IDs), loading a
// .env file from the working directory first when one exists.
//
// # Helpers
//
// NewWithToken wraps New with the minimal realm/token/app-ID configuration.
package qbclient
