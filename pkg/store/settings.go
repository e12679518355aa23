package store

import (
	"context"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// SelectionOptions fetches the global named value-lists referenced by
// Selection properties.
func (c *Client) SelectionOptions(ctx context.Context) ([]schema.ValueList, error) {
	var out struct {
		Options []schema.ValueList `json:"options"`
	}
	if err := c.getJSON(ctx, "selection options", "/api/selection-options", &out); err != nil {
		return nil, err
	}
	return out.Options, nil
}

// SaveSelectionOptions replaces the global named value-lists.
func (c *Client) SaveSelectionOptions(ctx context.Context, lists []schema.ValueList) error {
	body := struct {
		Options []schema.ValueList `json:"options"`
	}{Options: lists}

	var envelope successEnvelope
	if err := c.postJSON(ctx, "save selection options", "/api/selection-options", body, &envelope); err != nil {
		return err
	}
	return envelope.check("save selection options")
}

// AttributeSuggestions fetches the suggestion categories offered when
// building template groups.
func (c *Client) AttributeSuggestions(ctx context.Context) ([]schema.SuggestionCategory, error) {
	var out struct {
		Categories []schema.SuggestionCategory `json:"categories"`
	}
	if err := c.getJSON(ctx, "attribute suggestions", "/api/attribute-suggestions", &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// SaveTemplate posts the full template document to the given action URL
// (update when the URL carries the template id, create otherwise) and returns
// the redirect location.
func (c *Client) SaveTemplate(ctx context.Context, actionURL string, tpl schema.Template) (string, error) {
	var out struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := c.postJSON(ctx, "save template", actionURL, tpl, &out); err != nil {
		return "", err
	}
	return out.RedirectURL, nil
}
