// Package board holds the view-models behind the terminal UI: the main board,
// the shared-link viewer and the sign-in form. They own UI state, call the
// API and re-fetch after every mutation; rendering lives elsewhere.
package board

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/listify/internal/api"
	"github.com/Makepad-fr/listify/internal/model"
)

type ListsAPI interface {
	List(ctx context.Context) ([]model.List, error)
	Create(ctx context.Context, in model.ListInput) (*model.List, error)
	Update(ctx context.Context, id int64, in model.ListInput) (*model.List, error)
	Delete(ctx context.Context, id int64) error
}

type ItemsAPI interface {
	ForList(ctx context.Context, listID int64) ([]model.Item, error)
	Create(ctx context.Context, listID int64, in model.ItemInput) (*model.Item, error)
	Update(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error)
	Toggle(ctx context.Context, id int64) (*model.Item, error)
	Delete(ctx context.Context, id int64) error
}

type ShareAPI interface {
	Create(ctx context.Context, listID int64) (*model.ShareLink, error)
	Revoke(ctx context.Context, listID int64) error
	GetShared(ctx context.Context, token string) (*model.List, error)
}

// Session is what the view-models observe; session.Store satisfies it.
type Session interface {
	Current() *model.User
	Subscribe() (<-chan *model.User, func())
}

// Deps bundles the collaborators of a view-model.
type Deps struct {
	Lists        ListsAPI
	Items        ItemsAPI
	Share        ShareAPI
	Session      Session
	Log          logrus.FieldLogger
	PollInterval time.Duration
	ShareBaseURL string
}

// NewDeps wires the resource clients of c.
func NewDeps(c *api.Client, sess Session, log logrus.FieldLogger, interval time.Duration, shareBase string) Deps {
	return Deps{
		Lists:        c.Lists,
		Items:        c.Items,
		Share:        c.Share,
		Session:      sess,
		Log:          log,
		PollInterval: interval,
		ShareBaseURL: shareBase,
	}
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(prompt string) bool
