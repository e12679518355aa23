package store

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// CandidatesByTemplate fetches the {id, display_name} pairs of every entity
// belonging to the target template, used to populate Link property choices.
func (c *Client) CandidatesByTemplate(ctx context.Context, templateID int64) ([]schema.Candidate, error) {
	var out []schema.Candidate
	path := fmt.Sprintf("/api/kontakte-by-vorlage/%d", templateID)
	if err := c.getJSON(ctx, "candidates", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateField writes a single field of a single entity. The server confirms
// with {success}; callers apply the value locally only after this returns nil.
func (c *Client) UpdateField(ctx context.Context, entityID int64, field, value string) error {
	body := struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}{Field: field, Value: value}

	var envelope successEnvelope
	path := fmt.Sprintf("/api/kontakt/%d/update", entityID)
	if err := c.postJSON(ctx, "update field", path, body, &envelope); err != nil {
		return err
	}
	return envelope.check("update field")
}

// CreateEntity creates a new entity from the given template and value map and
// returns the stored record, including its server-assigned id.
func (c *Client) CreateEntity(ctx context.Context, templateID int64, values map[string]string) (schema.Entity, error) {
	body := struct {
		TemplateID int64             `json:"vorlage_id"`
		Values     map[string]string `json:"daten"`
	}{TemplateID: templateID, Values: values}

	var out struct {
		successEnvelope
		Entity schema.Entity `json:"kontakt"`
	}
	if err := c.postJSON(ctx, "create entity", "/api/kontakt/neu", body, &out); err != nil {
		return schema.Entity{}, err
	}
	if err := out.check("create entity"); err != nil {
		return schema.Entity{}, err
	}
	out.Entity.TemplateID = templateID
	return out.Entity, nil
}

// BulkDelete removes the given entity ids in one request. Nothing is deleted
// locally unless the store confirms success.
func (c *Client) BulkDelete(ctx context.Context, ids []int64) error {
	body := struct {
		IDs []int64 `json:"ids"`
	}{IDs: ids}

	var envelope successEnvelope
	if err := c.postJSON(ctx, "bulk delete", "/api/kontakte/bulk-delete", body, &envelope); err != nil {
		return err
	}
	return envelope.check("bulk delete")
}

// Export streams the opaque export download for a template into w. Supported
// formats are determined by the store (csv, xlsx, pdf).
func (c *Client) Export(ctx context.Context, templateID int64, format string, w io.Writer) error {
	path := fmt.Sprintf("/export/%d/%s", templateID, format)
	resp, err := c.do(ctx, "export", http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusErr("export", resp.StatusCode, "")
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return transportErr("export", err)
	}
	return nil
}
