package candidate

import "time"

// Cursor is a keyset position in (CreatedAt, ID) order. The zero value starts from the beginning.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// IsZero reports whether the cursor points at the start of the pool.
func (c Cursor) IsZero() bool { return c.ID == "" && c.CreatedAt.IsZero() }

// Page is one batch of the candidate pool.
type Page struct {
	Items []Candidate
	Next  Cursor
	Done  bool
}
