package api

import (
	"context"
	"net/http"

	"github.com/Makepad-fr/listify/internal/model"
)

type AuthClient struct{ c *Client }

// Register creates an account. It does not open a session.
func (a *AuthClient) Register(ctx context.Context, in model.Registration) (*model.User, error) {
	var u model.User
	if err := a.c.do(ctx, http.MethodPost, "/auth/register", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *AuthClient) Login(ctx context.Context, in model.Credentials) (*model.AuthToken, error) {
	var tok model.AuthToken
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", nil, in, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the identity behind the current bearer credential.
func (a *AuthClient) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := a.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
