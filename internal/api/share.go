package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Makepad-fr/listify/internal/model"
)

type ShareClient struct{ c *Client }

// Create issues (or returns the existing) share token for a list.
func (s *ShareClient) Create(ctx context.Context, listID int64) (*model.ShareLink, error) {
	var out model.ShareLink
	if err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/share/%d/share", listID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ShareClient) Revoke(ctx context.Context, listID int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/share/%d/share", listID), nil, nil, nil)
}

// GetShared resolves a share token to its list. Access is granted by the
// token, not by ownership.
func (s *ShareClient) GetShared(ctx context.Context, token string) (*model.List, error) {
	var out model.List
	path := "/share/shared/" + url.PathEscape(token)
	if err := s.c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
