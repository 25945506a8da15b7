// Package activity keeps the bounded list of recent happenings shown on the
// dashboard sidebar.
package activity

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 15

// Category groups entries for display.
type Category string

const (
	CategoryQuery    Category = "query"
	CategoryUpdate   Category = "update"
	CategoryGatepass Category = "gatepass"
	CategoryVessel   Category = "vessel"
	CategorySSR      Category = "ssr"
)

// Entry is one line of the activity feed. Entries are never modified once
// recorded.
type Entry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
}

// Log is a fixed-capacity ring of entries. Recording into a full log
// overwrites the oldest entry. All methods are safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	slots    []Entry
	next     int // slot the next Record writes
	size     int
	capacity int
}

// NewLog creates a log holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		slots:    make([]Entry, capacity),
		capacity: capacity,
	}
}

// Record appends an entry, evicting the oldest when full.
func (l *Log) Record(message string, timestamp time.Time, category Category) {
	l.Append(Entry{Message: message, Timestamp: timestamp, Category: category})
}

// Append is Record for an already built entry.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.slots[l.next] = e
	l.next = (l.next + 1) % l.capacity
	if l.size < l.capacity {
		l.size++
	}
}

// Recent returns the retained entries, most recent first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, l.size)
	for i := 1; i <= l.size; i++ {
		idx := (l.next - i + l.capacity) % l.capacity
		out = append(out, l.slots[idx])
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *Log) Capacity() int { return l.capacity }
