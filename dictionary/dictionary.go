package dictionary

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

var (
	// ErrNotFound is returned when a name or id has never been assigned.
	ErrNotFound = errors.New("dictionary: entry not found")
	// ErrNameConflict is returned when a rename target is held by another id.
	ErrNameConflict = errors.New("dictionary: name already in use")
)

// Entry is one name/id binding.
type Entry struct {
	ID   int32
	Name string
}

// Dictionary interns property names as small integer ids.
//
// Ids are minted from an atomic counter and never reassigned. A
// Dictionary is safe for concurrent use; concurrent ID calls for the same
// new name always observe the same id.
type Dictionary struct {
	byName *xsync.MapOf[string, int32]
	byID   *xsync.MapOf[int32, string]
	next   atomic.Int32

	// renameMu serializes UpdateName. Lookups and creation never take it.
	renameMu sync.Mutex
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		byName: xsync.NewMapOf[string, int32](),
		byID:   xsync.NewMapOf[int32, string](),
	}
}

// ID returns the id of name. If name is unknown and create is set, a new id is
// minted; otherwise ok is false.
func (d *Dictionary) ID(name string, create bool) (id int32, ok bool) {
	if id, ok := d.byName.Load(name); ok {
		return id, true
	}
	if !create {
		return 0, false
	}
	id, _ = d.byName.LoadOrCompute(name, func() int32 {
		id := d.next.Add(1) - 1
		d.byID.Store(id, name)
		return id
	})
	return id, true
}

// Name returns the name bound to id.
func (d *Dictionary) Name(id int32) (string, error) {
	name, ok := d.byID.Load(id)
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return name, nil
}

// UpdateName renames oldName to newName keeping its id, so records encoded
// before the rename decode with the new name.
func (d *Dictionary) UpdateName(oldName, newName string) error {
	d.renameMu.Lock()
	defer d.renameMu.Unlock()

	id, ok := d.byName.Load(oldName)
	if !ok {
		return fmt.Errorf("%w: name %q", ErrNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if other, loaded := d.byName.LoadOrStore(newName, id); loaded && other != id {
		return fmt.Errorf("%w: %q has id %d", ErrNameConflict, newName, other)
	}
	d.byID.Store(id, newName)
	d.byName.Delete(oldName)
	return nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return d.byID.Size()
}

// Entries returns all entries sorted by id.
func (d *Dictionary) Entries() []Entry {
	entries := make([]Entry, 0, d.byID.Size())
	d.byID.Range(func(id int32, name string) bool {
		entries = append(entries, Entry{ID: id, Name: name})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// restore replaces the contents with entries. Callers guarantee exclusivity.
func (d *Dictionary) restore(entries []Entry) {
	d.byName.Clear()
	d.byID.Clear()
	var next int32
	for _, e := range entries {
		d.byName.Store(e.Name, e.ID)
		d.byID.Store(e.ID, e.Name)
		next = max(next, e.ID+1)
	}
	d.next.Store(next)
}
