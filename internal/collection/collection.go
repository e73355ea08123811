// Package collection models the host's image collection: an append-only
// store of titled fields with string metadata.
package collection

import (
	"hcp-calibrate/internal/field"
)

// Entry is one image in the collection.
type Entry struct {
	Title string
	Field *field.Field
	Meta  map[string]string
}

// Collection holds session images in insertion order.
type Collection struct {
	entries   []Entry
	listeners []func(id int, e Entry)
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{}
}

// Add appends an entry and returns its id.
func (c *Collection) Add(e Entry) int {
	id := len(c.entries)
	c.entries = append(c.entries, e)
	for _, fn := range c.listeners {
		fn(id, e)
	}
	return id
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.entries)
}

// Entry returns the entry with the given id.
func (c *Collection) Entry(id int) (Entry, bool) {
	if id < 0 || id >= len(c.entries) {
		return Entry{}, false
	}
	return c.entries[id], true
}

// OnAdd registers a listener invoked for every appended entry.
func (c *Collection) OnAdd(fn func(id int, e Entry)) {
	c.listeners = append(c.listeners, fn)
}
