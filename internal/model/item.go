package model

// Item is a single checkable entry belonging to one List.
type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Checked   bool       `json:"checked"`
	ListID    int64      `json:"list_id"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// ItemInput is the body of item create/update calls.
type ItemInput struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// Progress counts checked and unchecked items.
func Progress(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Checked {
			done++
		} else {
			pending++
		}
	}
	return
}

// CompletedCount is the number of checked items.
func CompletedCount(items []Item) int {
	done, _ := Progress(items)
	return done
}
