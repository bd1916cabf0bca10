package grist

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cncparts/dxfsync/internal/model"
)

// Column IDs of the CNCPartsMaster table.
const (
	colReady           = "Ready"
	colUploadRequested = "Upload_to_Minio"
	colUploadStatus    = "Upload_Status"
	colFilename        = "DXF_Filename"
	colFolderPath      = "FolderPath"
	colThickness       = "Thickness"
	colProductPrefix   = "CNCProductPrefix"
	colMinioPath       = "MinioPath"
	colUploadedOn      = "UploadedOn"
)

// record is one row as returned by the records endpoint.
type record struct {
	ID     int64          `json:"id"`
	Fields map[string]any `json:"fields"`
}

type recordsResponse struct {
	Records []record `json:"records"`
}

type recordUpdate struct {
	ID     int64          `json:"id"`
	Fields map[string]any `json:"fields"`
}

// patchRequest is the batched update body; a single row is sent as a batch of one.
type patchRequest struct {
	Records []recordUpdate `json:"records"`
}

func (r record) toPartRow() model.PartRow {
	f := r.Fields
	return model.PartRow{
		ID:              r.ID,
		Ready:           isReady(f[colReady]),
		UploadRequested: model.ParseUploadRequested(text(f[colUploadRequested])),
		Status:          model.ParseUploadStatus(text(f[colUploadStatus])),
		Filename:        text(f[colFilename]),
		FolderPath:      text(f[colFolderPath]),
		Thickness:       text(f[colThickness]),
		ProductPrefix:   strings.TrimSpace(text(f[colProductPrefix])),
	}
}

// isReady accepts the numeric sentinel 1 and a toggle set to true.
// "1" as text, 2, or any other truthy value is not ready.
func isReady(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case float64:
		return x == 1
	default:
		return false
	}
}

// text renders a cell as a string. Numbers keep the literal form Grist sent.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

func updateFields(u model.StatusUpdate) map[string]any {
	fields := map[string]any{
		colUploadStatus: u.Status.String(),
		colUploadedOn:   nil,
	}
	if u.ObjectURL != "" {
		fields[colMinioPath] = u.ObjectURL
	}
	if u.UploadedOn != nil {
		fields[colUploadedOn] = u.UploadedOn.Format(time.RFC3339)
	}
	return fields
}
