package grist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cncparts/dxfsync/internal/model"
)

const recordsPath = "/docs/{docId}/tables/{tableId}/records"

// Client talks to the Grist REST API for a single table.
type Client struct {
	http    *resty.Client
	docID   string
	tableID string
	logger  *slog.Logger
}

// NewClient creates a Grist client. baseURL is the API root, e.g. https://grist.example.com/api.
func NewClient(baseURL, apiKey, docID, tableID string, logger *slog.Logger) *Client {
	logger = logger.With("component", "grist")
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second).
		SetLogger(restyLogger{logger: logger})

	return &Client{http: http, docID: docID, tableID: tableID, logger: logger}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"docId":   c.docID,
			"tableId": c.tableID,
		})
}

// FetchRows lists every record of the table.
func (c *Client) FetchRows(ctx context.Context) ([]model.PartRow, error) {
	resp, err := c.request(ctx).Get(recordsPath)
	if err != nil {
		return nil, c.toClientError(err, "failed to list records")
	}
	if !resp.IsSuccess() {
		return nil, c.toClientError(&apiError{StatusCode: resp.StatusCode(), Message: "list records failed"}, "failed to list records")
	}

	// UseNumber keeps numeric cells in the form Grist sent them.
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	var body recordsResponse
	if err := dec.Decode(&body); err != nil {
		return nil, c.toClientError(err, "failed to decode records")
	}

	c.logger.DebugContext(ctx, "records listed", "table", c.tableID, "count", len(body.Records))

	rows := make([]model.PartRow, 0, len(body.Records))
	for _, rec := range body.Records {
		rows = append(rows, rec.toPartRow())
	}
	return rows, nil
}

// UpdateRow writes the upload outcome to one record.
func (c *Client) UpdateRow(ctx context.Context, id int64, update model.StatusUpdate) error {
	payload := patchRequest{
		Records: []recordUpdate{{ID: id, Fields: updateFields(update)}},
	}

	resp, err := c.request(ctx).
		SetBody(payload).
		Patch(recordsPath)
	if err != nil {
		return c.toClientError(err, fmt.Sprintf("failed to update record %d", id))
	}
	if !resp.IsSuccess() {
		return c.toClientError(&apiError{StatusCode: resp.StatusCode(), Message: "update records failed"}, fmt.Sprintf("failed to update record %d", id))
	}

	return nil
}

// toClientError wraps an internal error into a ClientError for external consumers.
func (c *Client) toClientError(err error, context string) error {
	if err == nil {
		return nil
	}
	return &ClientError{Message: context, Err: err}
}

// restyLogger routes resty's own diagnostics into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
