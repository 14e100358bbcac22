// Package qbapi provides types, interfaces, and helpers for working with the
// Quickbase JSON REST API.
//
// # Overview
//
// The qbapi package defines the domain types (e.g., App, Table, Field, Record)
// and the interfaces for resource-oriented clients (e.g., TablesClient,
// RecordsClient). A concrete implementation of these clients is provided by
// the qbclient package, which wires configuration, transport, authentication,
// and metadata resolution. Most consumers should import qbclient to construct
// a client and then interact with the resource client interfaces exposed here.
//
// Getting a client
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
//	  cli, err := qbclient.New(&qbapi.Config{
//	    RealmHostname: "myrealm.quickbase.com",
//	    UserToken:     "b12x34_abc_...",
//	    AppIDs:        map[string]string{"Payroll": "bqx3abc12"},
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  tables, err := cli.Metadata().Tables(ctx, "Payroll")
//	  if err != nil { log.Fatal(err) }
//	  _ = tables
//	}
//
// # Metadata resolution
//
// Client code addresses apps, tables, and fields by their human-readable
// names. The MetadataResolver translates names to Quickbase identifiers.
// Table listings are re-fetched on every lookup so newly created tables
// resolve; per-table sizes and field maps are fetched lazily and cached for
// the life of the client. Name lookups are case-insensitive.
//
// # Queries
//
// Build query filter strings with Query, which resolves field labels against a
// table's field map and renders Quickbase's brace syntax:
//
//	q, err := qbapi.NewQuery(ctx, cli.Metadata(), "Payroll", "Timesheets")
//	expr, err := q.Eq("Status", "Approved")  // {6.EX.'Approved'}
//	where := qbapi.And(expr, other)
//
// # Errors
//
// API failures surface as *APIError with the HTTP status code; exhausted
// retries surface as *TransportError wrapping the final cause. Use the
// errors.As helpers (IsInput, IsTransport, IsNotFound, IsRateLimited) to
// branch on failure modes.
//
// # Caching
//
// The Cache interface and its implementations (MemoryCache, NATSKVCache,
// NoOpCache, CacheChain) provide optional response caching for metadata
// reads. Construct one from CacheConfig with NewCacheFromConfig.
package qbapi
