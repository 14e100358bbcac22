package client

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fieldworks-io/qbapi-client/internal/constants"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"golang.org/x/sync/errgroup"
)

// partitionChunks splits [0, total) into fetch jobs of at most chunkSize
// records. The last chunk is short.
func partitionChunks(total, chunkSize int) []qbapi.FetchJob {
	if total <= 0 {
		return nil
	}

	jobs := make([]qbapi.FetchJob, 0, (total+chunkSize-1)/chunkSize)

	for offset := 0; offset < total; offset += chunkSize {
		limit := chunkSize
		if offset+limit > total {
			limit = total - offset
		}

		jobs = append(jobs, qbapi.FetchJob{Offset: offset, Limit: limit})
	}

	return jobs
}

// exportPlan is the resolved shape of one bulk export.
type exportPlan struct {
	request        qbapi.RecordQueryRequest
	jobs           []qbapi.FetchJob
	maxConcurrency int
}

// planExport resolves names, sizes, and limits into chunk jobs.
func (c *RecordsClient) planExport(ctx context.Context, app, table, where string,
	opts *qbapi.ExportOptions,
) (*exportPlan, error) {
	info, err := c.metadata.Table(ctx, app, table)
	if err != nil {
		return nil, err
	}

	var selectFields []string
	if opts != nil {
		selectFields = opts.SelectFields
	}

	fieldIDs := make([]int, 0, len(info.Fields))

	if len(selectFields) == 0 {
		for _, field := range info.Fields {
			fieldIDs = append(fieldIDs, field.ID)
		}

		sort.Ints(fieldIDs)
	} else {
		for _, label := range selectFields {
			fieldID, err := c.metadata.FieldID(ctx, app, table, label)
			if err != nil {
				return nil, err
			}

			fieldIDs = append(fieldIDs, fieldID)
		}
	}

	total := info.Size
	if opts != nil && opts.RecordLimit > 0 && opts.RecordLimit < total {
		total = opts.RecordLimit
	}

	chunkSize := c.chunkSize
	if opts != nil && opts.ChunkSize > 0 {
		chunkSize = opts.ChunkSize
	}

	if chunkSize > c.maxChunkSize {
		chunkSize = c.maxChunkSize
	}

	maxConcurrency := c.maxConcurrency
	if opts != nil && opts.MaxConcurrency > 0 {
		maxConcurrency = opts.MaxConcurrency
	}

	return &exportPlan{
		request: qbapi.RecordQueryRequest{
			From:   info.ID,
			Select: fieldIDs,
			Where:  where,
		},
		jobs:           partitionChunks(total, chunkSize),
		maxConcurrency: maxConcurrency,
	}, nil
}

// ExportAll implements qbapi.RecordsClient.ExportAll. Chunks run through an
// errgroup with a concurrency limit; the first chunk failure cancels the
// group and fails the export with no partial rows.
func (c *RecordsClient) ExportAll(ctx context.Context, app, table, where string,
	opts *qbapi.ExportOptions,
) ([]qbapi.Record, error) {
	plan, err := c.planExport(ctx, app, table, where, opts)
	if err != nil {
		return nil, err
	}

	if len(plan.jobs) == 0 {
		c.logger.Warn("No records to export", map[string]interface{}{
			"table": table,
			"where": where,
		})

		return []qbapi.Record{}, nil
	}

	c.logger.Info("Starting record export", map[string]interface{}{
		"table":       table,
		"chunks":      len(plan.jobs),
		"concurrency": plan.maxConcurrency,
	})

	chunkRows := make([][]qbapi.Record, len(plan.jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(plan.maxConcurrency)

	for i, job := range plan.jobs {
		group.Go(func() error {
			request := plan.request
			request.Options = &qbapi.QueryOptions{Skip: job.Offset, Top: job.Limit}

			rows, err := c.runQuery(groupCtx, &request)
			if err != nil {
				c.logger.Error("Chunk fetch failed", map[string]interface{}{
					"table":  table,
					"offset": job.Offset,
					"limit":  job.Limit,
					"error":  err.Error(),
				})

				return fmt.Errorf("chunk at offset %d: %w", job.Offset, err)
			}

			chunkRows[i] = rows

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", qbapi.ErrExportAborted, err)
	}

	records := make([]qbapi.Record, 0, len(plan.jobs)*len(chunkRows[0]))
	for _, rows := range chunkRows {
		records = append(records, rows...)
	}

	c.logger.Info("Record export complete", map[string]interface{}{
		"table":   table,
		"records": len(records),
	})

	return records, nil
}

// ExportCSV implements qbapi.RecordsClient.ExportCSV. An empty result writes
// no file and returns "".
func (c *RecordsClient) ExportCSV(ctx context.Context, app, table, where, outputDir string,
	opts *qbapi.ExportOptions,
) (string, error) {
	records, err := c.ExportAll(ctx, app, table, where, opts)
	if err != nil {
		return "", err
	}

	if len(records) == 0 {
		return "", nil
	}

	var header []string
	if opts != nil && len(opts.SelectFields) > 0 {
		header = opts.SelectFields
	} else {
		for label := range records[0] {
			header = append(header, label)
		}

		sort.Strings(header)
	}

	err = os.MkdirAll(outputDir, constants.DownloadDirPerm)
	if err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.csv", table, time.Now().Format(constants.ExportDateFormat))
	path := filepath.Join(outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	err = writer.Write(header)
	if err != nil {
		return "", fmt.Errorf("writing export header: %w", err)
	}

	row := make([]string, len(header))

	for _, record := range records {
		for i, label := range header {
			value := record[label]
			if value == nil {
				row[i] = ""
			} else {
				row[i] = fmt.Sprint(value)
			}
		}

		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("writing export row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flushing export file: %w", err)
	}

	c.logger.Info("Wrote export file", map[string]interface{}{
		"path":    path,
		"records": len(records),
	})

	return path, nil
}
