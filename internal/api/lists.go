package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Makepad-fr/listify/internal/model"
)

type ListsClient struct{ c *Client }

func (l *ListsClient) List(ctx context.Context) ([]model.List, error) {
	out := []model.List{}
	if err := l.c.do(ctx, http.MethodGet, "/lists", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.List{}
	}
	return out, nil
}

func (l *ListsClient) Get(ctx context.Context, id int64) (*model.List, error) {
	var out model.List
	if err := l.c.do(ctx, http.MethodGet, fmt.Sprintf("/lists/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *ListsClient) Create(ctx context.Context, in model.ListInput) (*model.List, error) {
	var out model.List
	if err := l.c.do(ctx, http.MethodPost, "/lists", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *ListsClient) Update(ctx context.Context, id int64, in model.ListInput) (*model.List, error) {
	var out model.List
	if err := l.c.do(ctx, http.MethodPut, fmt.Sprintf("/lists/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *ListsClient) Delete(ctx context.Context, id int64) error {
	return l.c.do(ctx, http.MethodDelete, fmt.Sprintf("/lists/%d", id), nil, nil, nil)
}
