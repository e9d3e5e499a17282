package navigator

import "fmt"

// Cache is the ordered history of fetched entries plus a cursor. Positions
// strictly increase by one with no gaps. A cursor of -1 means empty.
type Cache struct {
	entries []Entry
	cursor  int
}

func NewCache() *Cache {
	return &Cache{cursor: -1}
}

func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) Cursor() int {
	return c.cursor
}

// Frontier is one past the last fetched entry.
func (c *Cache) Frontier() int {
	return len(c.entries)
}

// Append discards every entry after the cursor, pushes entry and moves the
// cursor onto it. The entry must continue the position sequence of the entry
// at the cursor; on an empty cache any position >= 1 is accepted.
func (c *Cache) Append(entry Entry) error {
	if entry.Position < 1 {
		return fmt.Errorf("%w: position %d", ErrNonContiguous, entry.Position)
	}
	if c.cursor >= 0 {
		prev := c.entries[c.cursor].Position
		if entry.Position != prev+1 {
			return fmt.Errorf("%w: got position %d after %d", ErrNonContiguous, entry.Position, prev)
		}
	}

	c.entries = append(c.entries[:c.cursor+1], entry.clone())
	c.cursor = len(c.entries) - 1
	return nil
}

// Get returns a copy of the entry at index.
func (c *Cache) Get(index int) (Entry, error) {
	if err := c.check(index); err != nil {
		return Entry{}, err
	}
	return c.entries[index].clone(), nil
}

func (c *Cache) MoveCursor(index int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.cursor = index
	return nil
}

// Current returns the entry at the cursor, false when empty.
func (c *Cache) Current() (Entry, bool) {
	if c.cursor < 0 {
		return Entry{}, false
	}
	return c.entries[c.cursor].clone(), true
}

// Tail returns the last fetched entry, false when empty.
func (c *Cache) Tail() (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[len(c.entries)-1].clone(), true
}

// Entries returns a copy of the whole history.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

func (c *Cache) Reset() {
	c.entries = nil
	c.cursor = -1
}

// update applies fn to the stored entry at index. Only the navigator mutates
// entries in place, and never the question.
func (c *Cache) update(index int, fn func(e *Entry)) error {
	if err := c.check(index); err != nil {
		return err
	}
	q := c.entries[index].Question
	fn(&c.entries[index])
	c.entries[index].Question = q
	return nil
}

func (c *Cache) check(index int) error {
	if index < 0 || index >= len(c.entries) {
		return fmt.Errorf("%w: index %d, cache holds %d", ErrOutOfRange, index, len(c.entries))
	}
	return nil
}
