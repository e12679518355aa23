package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile is one tabular file handed to the import upload endpoint.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadResult is the staged server response to an import upload: the column
// headers found in the file(s), a small preview, and the opaque parsed rows
// that must be echoed back on finalize.
type UploadResult struct {
	Headers      []string        `json:"headers"`
	Preview      json.RawMessage `json:"preview_data,omitempty"`
	OriginalData json.RawMessage `json:"original_data"`
}

// FinalizeRequest commits a staged import: the target template, the
// header-to-property mappings, per-property defaults for unmapped columns,
// and the opaque row data returned by the upload.
type FinalizeRequest struct {
	TemplateID    int64             `json:"vorlage_id"`
	Mappings      map[string]string `json:"mappings"`
	DefaultValues map[string]string `json:"default_values,omitempty"`
	OriginalData  json.RawMessage   `json:"original_data"`
}

// uploadFieldName is the multipart field the store reads files from. Legacy
// stores accept only the singular field, selected when one file is uploaded.
const (
	uploadFieldName       = "files"
	legacyUploadFieldName = "file"
)

// UploadImport posts the files as multipart form data and returns the staged
// headers and row data. A single file goes under the legacy singular field so
// older stores keep working; multiple files use the plural field.
func (c *Client) UploadImport(ctx context.Context, files []UploadFile) (UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for i, file := range files {
		field := uploadFieldName
		if len(files) == 1 && i == 0 {
			field = legacyUploadFieldName
		}
		part, err := writer.CreateFormFile(field, file.Name)
		if err != nil {
			return UploadResult{}, transportErr("upload import", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return UploadResult{}, transportErr("upload import", err)
		}
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, transportErr("upload import", err)
	}

	resp, err := c.do(ctx, "upload import", http.MethodPost, "/import/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return UploadResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out UploadResult
	if err := decodeResponse("upload import", resp, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

// FinalizeImport commits the staged import and returns the redirect location
// the caller should navigate to.
func (c *Client) FinalizeImport(ctx context.Context, req FinalizeRequest) (string, error) {
	var out struct {
		successEnvelope
		RedirectURL string `json:"redirect_url"`
	}
	if err := c.postJSON(ctx, "finalize import", "/import/finalize", req, &out); err != nil {
		return "", err
	}
	if err := out.check("finalize import"); err != nil {
		return "", err
	}
	return out.RedirectURL, nil
}
