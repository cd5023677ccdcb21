package api

import (
	"context"
	"fmt"
	"net/http"

	"condoctl/internal/record"
)

// The data surface. Create/update bodies use the camelCase shapes the
// admin service accepts; list responses are normalized through
// internal/record so key casing never leaks past this file.

type managerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Titles   string `json:"titles"`
	Initials string `json:"initials"`
}

type associationBody struct {
	LegalName  string `json:"legalName"`
	FilterName string `json:"filterName"`
	Location   string `json:"location"`
	ManagerID  string `json:"managerId"`
}

// ListManagers fetches and normalizes all manager records.
func (c *Client) ListManagers(ctx context.Context) ([]record.Manager, error) {
	payload, err := c.do(ctx, http.MethodGet, c.adminURL("admin", "data", "managers"), nil)
	if err != nil {
		return nil, err
	}
	raws := record.UnwrapList(payload)
	out := make([]record.Manager, 0, len(raws))
	for _, raw := range raws {
		out = append(out, record.NormalizeManager(raw))
	}
	return out, nil
}

// ListAssociations fetches and normalizes all association records,
// resolving display names against the supplied manager set when the
// backend does not embed them.
func (c *Client) ListAssociations(ctx context.Context, byID map[string]record.Manager) ([]record.Association, error) {
	payload, err := c.do(ctx, http.MethodGet, c.adminURL("admin", "data", "associations"), nil)
	if err != nil {
		return nil, err
	}
	raws := record.UnwrapList(payload)
	out := make([]record.Association, 0, len(raws))
	for _, raw := range raws {
		out = append(out, record.NormalizeAssociation(raw, byID))
	}
	return out, nil
}

// CreateManager persists a new manager and returns the created record as
// the backend sees it, including its assigned identifier.
func (c *Client) CreateManager(ctx context.Context, m record.Manager) (record.Manager, error) {
	body := managerBody{Name: m.Name, Email: m.Email, Titles: m.Titles, Initials: m.Initials}
	payload, err := c.do(ctx, http.MethodPost, c.adminURL("admin", "data", "managers"), body)
	if err != nil {
		return record.Manager{}, err
	}
	raw, ok := payload.(map[string]any)
	if !ok {
		return record.Manager{}, fmt.Errorf("create manager: unexpected response shape %T", payload)
	}
	return record.NormalizeManager(raw), nil
}

// UpdateManager sends a full-record update. The response body is ignored.
func (c *Client) UpdateManager(ctx context.Context, m record.Manager) error {
	body := managerBody{Name: m.Name, Email: m.Email, Titles: m.Titles, Initials: m.Initials}
	_, err := c.do(ctx, http.MethodPut, c.adminURL("admin", "data", "managers", m.ID), body)
	return err
}

// DeleteManager removes a manager record.
func (c *Client) DeleteManager(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminURL("admin", "data", "managers", id), nil)
	return err
}

// CreateAssociation persists a new association and returns the created
// record.
func (c *Client) CreateAssociation(ctx context.Context, a record.Association) (record.Association, error) {
	body := associationBody{LegalName: a.LegalName, FilterName: a.FilterName, Location: a.Location, ManagerID: a.ManagerID}
	payload, err := c.do(ctx, http.MethodPost, c.adminURL("admin", "data", "associations"), body)
	if err != nil {
		return record.Association{}, err
	}
	raw, ok := payload.(map[string]any)
	if !ok {
		return record.Association{}, fmt.Errorf("create association: unexpected response shape %T", payload)
	}
	return record.NormalizeAssociation(raw, nil), nil
}

// UpdateAssociation sends a full-record update. The response body is
// ignored.
func (c *Client) UpdateAssociation(ctx context.Context, a record.Association) error {
	body := associationBody{LegalName: a.LegalName, FilterName: a.FilterName, Location: a.Location, ManagerID: a.ManagerID}
	_, err := c.do(ctx, http.MethodPut, c.adminURL("admin", "data", "associations", a.ID), body)
	return err
}

// DeleteAssociation removes an association record.
func (c *Client) DeleteAssociation(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.adminURL("admin", "data", "associations", id), nil)
	return err
}
