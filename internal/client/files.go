package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/fieldworks-io/qbapi-client/internal/constants"
	"github.com/fieldworks-io/qbapi-client/internal/http"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
)

// FilesClient implements qbapi.FilesClient.
type FilesClient struct {
	httpClient     *http.Client
	metadata       *MetadataCache
	logger         qbapi.Logger
	maxConcurrency int
}

// NewFilesClient creates a new file attachments client.
func NewFilesClient(httpClient *http.Client, metadata *MetadataCache, logger qbapi.Logger, maxConcurrency int) *FilesClient {
	return &FilesClient{
		httpClient:     httpClient,
		metadata:       metadata,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// AttachmentFields implements qbapi.FilesClient.AttachmentFields.
func (c *FilesClient) AttachmentFields(ctx context.Context, app, table string) ([]string, error) {
	fields, err := c.metadata.FieldMap(ctx, app, table)
	if err != nil {
		return nil, err
	}

	var labels []string

	for label, info := range fields {
		if info.Type == "file" {
			labels = append(labels, label)
		}
	}

	sort.Strings(labels)

	return labels, nil
}

// buildDownloadJobs queries (record ID, file field) pairs and converts them
// to jobs. Rows missing the record ID, file name, or URL are skipped.
func (c *FilesClient) buildDownloadJobs(ctx context.Context, app, table, fieldLabel, targetDir, where string) ([]qbapi.DownloadJob, error) {
	tableID, err := c.metadata.TableID(ctx, app, table)
	if err != nil {
		return nil, err
	}

	fieldID, err := c.metadata.FieldID(ctx, app, table, fieldLabel)
	if err != nil {
		return nil, err
	}

	fields, err := c.metadata.FieldMap(ctx, app, table)
	if err != nil {
		return nil, err
	}

	for label, info := range fields {
		if info.ID == fieldID && info.Type != "file" {
			return nil, fmt.Errorf("%w: %q is %s", qbapi.ErrNotAFileField, label, info.Type)
		}
	}

	request := &qbapi.RecordQueryRequest{
		From:   tableID,
		Select: []int{constants.RecordIDFieldID, fieldID},
		Where:  where,
	}

	resp, err := c.httpClient.Post(ctx, "/records/query", request)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}

	var result qbapi.RecordQueryResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing attachment query: %w", err)
	}

	var jobs []qbapi.DownloadJob

	for _, row := range result.Data {
		recordCell, ok := row[strconv.Itoa(constants.RecordIDFieldID)]
		if !ok || recordCell.Value == nil {
			continue
		}

		fileCell, ok := row[strconv.Itoa(fieldID)]
		if !ok || fileCell.Value == nil {
			continue
		}

		file := parseFileValue(fileCell.Value)
		if file.FileName == "" || file.URL == "" {
			continue
		}

		recordID := formatRecordID(recordCell.Value)

		jobs = append(jobs, qbapi.DownloadJob{
			RecordID: recordID,
			FileName: file.FileName,
			URL:      file.URL,
			Path:     filepath.Join(targetDir, fmt.Sprintf("%s_%s", recordID, file.FileName)),
		})
	}

	return jobs, nil
}

// parseFileValue extracts the file name and download URL from a file cell.
func parseFileValue(value interface{}) qbapi.FileValue {
	cell, ok := value.(map[string]interface{})
	if !ok {
		return qbapi.FileValue{}
	}

	var file qbapi.FileValue

	if name, ok := cell["fileName"].(string); ok {
		file.FileName = name
	}

	if url, ok := cell["url"].(string); ok {
		file.URL = url
	}

	if version, ok := cell["versionNumber"].(float64); ok {
		file.Version = int(version)
	}

	return file
}

// formatRecordID renders a record ID cell without a float exponent. JSON
// numbers decode as float64.
func formatRecordID(value interface{}) string {
	if f, ok := value.(float64); ok {
		return strconv.FormatInt(int64(f), 10)
	}

	return fmt.Sprint(value)
}

// DownloadAll implements qbapi.FilesClient.DownloadAll. Jobs run under a
// bounded semaphore sharing one connection pool. An existing destination is
// skipped with a warning; individual failures land on the job result and
// never abort siblings.
func (c *FilesClient) DownloadAll(ctx context.Context, app, table, fieldLabel, targetDir, where string) ([]qbapi.DownloadResult, error) {
	jobs, err := c.buildDownloadJobs(ctx, app, table, fieldLabel, targetDir, where)
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		c.logger.Warn("No attachments to download", map[string]interface{}{
			"table": table,
			"field": fieldLabel,
		})

		return []qbapi.DownloadResult{}, nil
	}

	err = os.MkdirAll(targetDir, constants.DownloadDirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	c.logger.Info("Starting attachment download", map[string]interface{}{
		"table":       table,
		"field":       fieldLabel,
		"jobs":        len(jobs),
		"concurrency": c.maxConcurrency,
	})

	results := make([]qbapi.DownloadResult, len(jobs))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, c.maxConcurrency)

	for index, job := range jobs {
		waitGroup.Add(1)

		go func(index int, job qbapi.DownloadJob) {
			defer waitGroup.Done()

			// Acquire semaphore
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			results[index] = c.downloadOne(ctx, job)
		}(index, job)
	}

	waitGroup.Wait()

	failed := 0

	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}

	c.logger.Info("Attachment download complete", map[string]interface{}{
		"table":  table,
		"jobs":   len(results),
		"failed": failed,
	})

	return results, nil
}

// downloadOne fetches a single attachment to its destination path.
func (c *FilesClient) downloadOne(ctx context.Context, job qbapi.DownloadJob) qbapi.DownloadResult {
	result := qbapi.DownloadResult{
		RecordID: job.RecordID,
		FileName: job.FileName,
	}

	if _, err := os.Stat(job.Path); err == nil {
		c.logger.Warn("Attachment already exists, skipping", map[string]interface{}{
			"path": job.Path,
		})

		result.SavedPath = job.Path
		result.Skipped = true

		return result
	}

	file, err := os.Create(job.Path)
	if err != nil {
		result.Err = fmt.Errorf("creating %s: %w", job.Path, err)

		c.logger.Error("Attachment download failed", map[string]interface{}{
			"record": job.RecordID,
			"file":   job.FileName,
			"error":  result.Err.Error(),
		})

		return result
	}

	err = c.httpClient.DownloadTo(ctx, job.URL, file)

	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(job.Path)
		result.Err = fmt.Errorf("downloading %s: %w", job.FileName, err)

		c.logger.Error("Attachment download failed", map[string]interface{}{
			"record": job.RecordID,
			"file":   job.FileName,
			"error":  result.Err.Error(),
		})

		return result
	}

	result.SavedPath = job.Path

	return result
}
