package model

// List is a named collection of items owned by one user.
// ShareToken is set iff IsShared is true.
type List struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	UserID      int64      `json:"user_id"`
	ShareToken  *string    `json:"share_token"`
	IsShared    bool       `json:"is_shared"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// Shared reports whether the list currently carries an active share token.
func (l List) Shared() bool {
	return l.IsShared && l.ShareToken != nil && *l.ShareToken != ""
}

// Token returns the share token or "".
func (l List) Token() string {
	if l.ShareToken == nil {
		return ""
	}
	return *l.ShareToken
}

// Desc returns the description or "".
func (l List) Desc() string {
	if l.Description == nil {
		return ""
	}
	return *l.Description
}

// WithShare folds an issued token into the list.
func (l List) WithShare(token string) List {
	if token == "" {
		l.ShareToken = nil
		l.IsShared = false
		return l
	}
	t := token
	l.ShareToken = &t
	l.IsShared = true
	return l
}

// ListInput is the body of list create/update calls.
type ListInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// ShareLink is the one-time result of issuing a share token.
type ShareLink struct {
	ShareToken string `json:"share_token"`
	ShareURL   string `json:"share_url"`
}
