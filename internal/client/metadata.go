package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/fieldworks-io/qbapi-client/internal/constants"
	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// appEntry is the cached state for one application.
type appEntry struct {
	name   string
	id     string
	tables map[string]*tableEntry // keyed by lowercased table name
}

// tableEntry is the cached state for one table. size and fields are populated
// lazily; size is fetched once and never refreshed.
type tableEntry struct {
	name      string
	id        string
	size      int
	sizeKnown bool
	fields    map[string]qbapi.FieldInfo // keyed by label as returned by the API
}

// MetadataCache implements qbapi.MetadataResolver. It owns the nested
// app -> tables -> {id, size, fields} cache for one client instance.
//
// Lookups against warm state are read-only; population is not synchronized.
// Warm the entries a concurrent fetch needs before starting it.
type MetadataCache struct {
	httpClient    *http.Client
	responseCache qbapi.Cache
	logger        qbapi.Logger
	apps          map[string]*appEntry // keyed by lowercased app name
}

// NewMetadataCache seeds the cache from the configured app name -> ID map.
func NewMetadataCache(httpClient *http.Client, appIDs map[string]string, responseCache qbapi.Cache, logger qbapi.Logger) *MetadataCache {
	apps := make(map[string]*appEntry, len(appIDs))
	for name, id := range appIDs {
		apps[strings.ToLower(name)] = &appEntry{name: name, id: id}
	}

	return &MetadataCache{
		httpClient:    httpClient,
		responseCache: responseCache,
		logger:        logger,
		apps:          apps,
	}
}

// ResolveApp maps a friendly app name or app ID to the canonical friendly
// name. Name matching is case-insensitive.
func (m *MetadataCache) ResolveApp(identifier string) (string, error) {
	if entry, ok := m.apps[strings.ToLower(identifier)]; ok {
		return entry.name, nil
	}

	for _, entry := range m.apps {
		if entry.id == identifier {
			return entry.name, nil
		}
	}

	return "", &qbapi.InputError{Kind: "app", Name: identifier, Available: m.appNames()}
}

// AppID maps a friendly app name or app ID to the platform app ID.
func (m *MetadataCache) AppID(identifier string) (string, error) {
	name, err := m.ResolveApp(identifier)
	if err != nil {
		return "", err
	}

	return m.apps[strings.ToLower(name)].id, nil
}

func (m *MetadataCache) appNames() []string {
	names := make([]string, 0, len(m.apps))
	for _, entry := range m.apps {
		names = append(names, entry.name)
	}

	sort.Strings(names)

	return names
}

// Tables lists the tables of an app. The listing itself always goes remote;
// the name -> ID index is refreshed from the response as a side effect.
func (m *MetadataCache) Tables(ctx context.Context, app string) ([]qbapi.Table, error) {
	name, err := m.ResolveApp(app)
	if err != nil {
		return nil, err
	}

	entry := m.apps[strings.ToLower(name)]

	body, err := m.getCached(ctx, "/tables", url.Values{"appId": []string{entry.id}})
	if err != nil {
		return nil, fmt.Errorf("listing tables for app %q: %w", name, err)
	}

	var list qbapi.TableList

	err = json.Unmarshal(body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing table listing for app %q: %w", name, err)
	}

	if entry.tables == nil {
		entry.tables = make(map[string]*tableEntry, len(list))
	}

	for _, table := range list {
		key := strings.ToLower(table.Name)
		if existing, ok := entry.tables[key]; ok {
			existing.id = table.ID

			continue
		}

		entry.tables[key] = &tableEntry{name: table.Name, id: table.ID}
	}

	return list, nil
}

// tableEntryFor resolves a table by ID first, then case-insensitive name.
// The app's table listing is re-fetched on every call so tables created
// after the cache warmed still resolve; per-table size and field entries
// survive the refresh.
func (m *MetadataCache) tableEntryFor(ctx context.Context, app, table string) (*appEntry, *tableEntry, error) {
	name, err := m.ResolveApp(app)
	if err != nil {
		return nil, nil, err
	}

	entry := m.apps[strings.ToLower(name)]

	_, err = m.Tables(ctx, app)
	if err != nil {
		return nil, nil, err
	}

	for _, tbl := range entry.tables {
		if tbl.id == table {
			return entry, tbl, nil
		}
	}

	if tbl, ok := entry.tables[strings.ToLower(table)]; ok {
		return entry, tbl, nil
	}

	available := make([]string, 0, len(entry.tables))
	for _, tbl := range entry.tables {
		available = append(available, tbl.name)
	}

	sort.Strings(available)

	return nil, nil, &qbapi.InputError{Kind: "table", Name: table, Available: available}
}

// Table returns the cached schema record for a table, fetching size and
// fields on first access. Size is nextRecordId - 1 at fetch time and is
// never refreshed afterwards.
func (m *MetadataCache) Table(ctx context.Context, app, table string) (*qbapi.TableInfo, error) {
	owner, entry, err := m.tableEntryFor(ctx, app, table)
	if err != nil {
		return nil, err
	}

	if !entry.sizeKnown {
		body, err := m.getCached(ctx, "/tables/"+entry.id, url.Values{"appId": []string{owner.id}})
		if err != nil {
			return nil, fmt.Errorf("getting table %q: %w", entry.name, err)
		}

		var detail qbapi.Table

		err = json.Unmarshal(body, &detail)
		if err != nil {
			return nil, fmt.Errorf("parsing table %q: %w", entry.name, err)
		}

		entry.size = detail.NextRecordID - 1
		entry.sizeKnown = true
	}

	fields, err := m.fieldMapFor(ctx, entry)
	if err != nil {
		return nil, err
	}

	return &qbapi.TableInfo{ID: entry.id, Name: entry.name, Size: entry.size, Fields: fields}, nil
}

// TableID maps a table name or ID to the platform table ID.
func (m *MetadataCache) TableID(ctx context.Context, app, table string) (string, error) {
	_, entry, err := m.tableEntryFor(ctx, app, table)
	if err != nil {
		return "", err
	}

	return entry.id, nil
}

// fieldMapFor populates entry.fields on first use. Population is
// all-or-nothing: a fetch or decode failure leaves the map empty so the next
// call retries.
func (m *MetadataCache) fieldMapFor(ctx context.Context, entry *tableEntry) (map[string]qbapi.FieldInfo, error) {
	if entry.fields != nil {
		return entry.fields, nil
	}

	body, err := m.getCached(ctx, "/fields", url.Values{"tableId": []string{entry.id}})
	if err != nil {
		return nil, fmt.Errorf("listing fields for table %q: %w", entry.name, err)
	}

	var list qbapi.FieldList

	err = json.Unmarshal(body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing field listing for table %q: %w", entry.name, err)
	}

	fields := make(map[string]qbapi.FieldInfo, len(list))
	for _, field := range list {
		fields[field.Label] = qbapi.FieldInfo{ID: field.ID, Type: field.FieldType}
	}

	entry.fields = fields

	return fields, nil
}

// FieldMap returns the label -> {id, type} map for a table, fetching it on
// first access.
func (m *MetadataCache) FieldMap(ctx context.Context, app, table string) (map[string]qbapi.FieldInfo, error) {
	_, entry, err := m.tableEntryFor(ctx, app, table)
	if err != nil {
		return nil, err
	}

	return m.fieldMapFor(ctx, entry)
}

// FieldID resolves a field label to its platform ID. Matching is exact
// first, then case-insensitive.
func (m *MetadataCache) FieldID(ctx context.Context, app, table, label string) (int, error) {
	fields, err := m.FieldMap(ctx, app, table)
	if err != nil {
		return 0, err
	}

	if info, ok := fields[label]; ok {
		return info.ID, nil
	}

	for name, info := range fields {
		if strings.EqualFold(name, label) {
			return info.ID, nil
		}
	}

	available := make([]string, 0, len(fields))
	for name := range fields {
		available = append(available, name)
	}

	sort.Strings(available)

	return 0, &qbapi.InputError{Kind: "field", Name: label, Available: available}
}

// Relationships lists the relationships of a table. Never cached.
func (m *MetadataCache) Relationships(ctx context.Context, app, table string) ([]qbapi.Relationship, error) {
	tableID, err := m.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	resp, err := m.httpClient.Get(ctx, "/tables/"+tableID+"/relationships", nil)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	var result struct {
		Relationships []qbapi.Relationship `json:"relationships"`
	}

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	return result.Relationships, nil
}

// Describe returns a snapshot of the warmed cache for logging and CLI
// display: app -> table -> {id, size, field count}.
func (m *MetadataCache) Describe() map[string]map[string]map[string]interface{} {
	summary := make(map[string]map[string]map[string]interface{}, len(m.apps))

	for _, app := range m.apps {
		tables := make(map[string]map[string]interface{}, len(app.tables))
		for _, tbl := range app.tables {
			tables[tbl.name] = map[string]interface{}{
				"id":     tbl.id,
				"size":   tbl.size,
				"fields": len(tbl.fields),
			}
		}

		summary[app.name] = tables
	}

	return summary
}

// getCached performs a GET through the optional response cache. Cache
// failures degrade to a plain fetch.
func (m *MetadataCache) getCached(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	if m.responseCache != nil {
		if entry, err := m.responseCache.Get(ctx, key); err == nil {
			return entry.Data, nil
		}
	}

	resp, err := m.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	if m.responseCache != nil {
		err = m.responseCache.Set(ctx, key, &qbapi.CacheEntry{
			Data:      resp.Body,
			ExpiresAt: time.Now().Add(constants.DefaultCacheTTL),
		})
		if err != nil {
			m.logger.Warn("Failed to cache metadata response", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return resp.Body, nil
}
