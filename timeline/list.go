package timeline

import (
	"sync"

	"github.com/agnosto/chirp/posts"
)

type EventKind int

const (
	// Reset means every bound row is stale and the whole list must be redrawn.
	Reset EventKind = iota
	// Changed means only the row at Index was replaced.
	Changed
)

func (k EventKind) String() string {
	switch k {
	case Reset:
		return "reset"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind  EventKind
	Index int
	Len   int
}

// List is an observable, ordered collection of posts. Subscribers are called
// synchronously after each mutation, outside the list's lock.
type List struct {
	mu     sync.RWMutex
	items  []posts.Post
	subs   map[int]func(Event)
	nextID int
}

func NewList() *List {
	return &List{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a func that removes it.
func (l *List) Subscribe(fn func(Event)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *List) publish(ev Event) {
	l.mu.RLock()
	subs := make([]func(Event), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Clear empties the list.
func (l *List) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
	l.publish(Event{Kind: Reset})
}

// AddAll appends batch in order.
func (l *List) AddAll(batch []posts.Post) {
	l.mu.Lock()
	l.items = append(l.items, batch...)
	n := len(l.items)
	l.mu.Unlock()
	l.publish(Event{Kind: Reset, Len: n})
}

// ReplaceAll swaps the contents for batch and emits a single Reset.
func (l *List) ReplaceAll(batch []posts.Post) {
	l.mu.Lock()
	l.items = append([]posts.Post(nil), batch...)
	n := len(l.items)
	l.mu.Unlock()
	l.publish(Event{Kind: Reset, Len: n})
}

// ReplaceByID swaps the post whose id matches p.ID, wherever it currently sits.
func (l *List) ReplaceByID(p posts.Post) (int, bool) {
	l.mu.Lock()
	idx := -1
	for i := range l.items {
		if l.items[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return -1, false
	}
	l.items[idx] = p
	n := len(l.items)
	l.mu.Unlock()
	l.publish(Event{Kind: Changed, Index: idx, Len: n})
	return idx, true
}

// Len returns the number of items.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Find returns the post with id and its position.
func (l *List) Find(id int64) (posts.Post, int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, p := range l.items {
		if p.ID == id {
			return p, i, true
		}
	}
	return posts.Post{}, -1, false
}

// Snapshot returns a copy of the items.
func (l *List) Snapshot() []posts.Post {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]posts.Post(nil), l.items...)
}

// Last returns the final item, if any.
func (l *List) Last() (posts.Post, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.items) == 0 {
		return posts.Post{}, false
	}
	return l.items[len(l.items)-1], true
}
