package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Makepad-fr/listify/internal/model"
)

type ItemsClient struct{ c *Client }

// ForList fetches every item of a list.
func (i *ItemsClient) ForList(ctx context.Context, listID int64) ([]model.Item, error) {
	out := []model.Item{}
	if err := i.c.do(ctx, http.MethodGet, fmt.Sprintf("/items/list/%d", listID), nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Item{}
	}
	return out, nil
}

func (i *ItemsClient) Get(ctx context.Context, id int64) (*model.Item, error) {
	var out model.Item
	if err := i.c.do(ctx, http.MethodGet, fmt.Sprintf("/items/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *ItemsClient) Create(ctx context.Context, listID int64, in model.ItemInput) (*model.Item, error) {
	q := url.Values{"list_id": []string{strconv.FormatInt(listID, 10)}}
	var out model.Item
	if err := i.c.do(ctx, http.MethodPost, "/items", q, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *ItemsClient) Update(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error) {
	var out model.Item
	if err := i.c.do(ctx, http.MethodPut, fmt.Sprintf("/items/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Toggle flips the checked state server-side.
func (i *ItemsClient) Toggle(ctx context.Context, id int64) (*model.Item, error) {
	var out model.Item
	if err := i.c.do(ctx, http.MethodPatch, fmt.Sprintf("/items/%d/toggle", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *ItemsClient) Delete(ctx context.Context, id int64) error {
	return i.c.do(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil, nil, nil)
}
