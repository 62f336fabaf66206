package scraper

import (
	"bytes"
	"encoding/json"
)

// Credentials are the portal login of one invocation. They are never
// persisted and never logged.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate requires both fields to be non-empty.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

// Task is one pending activity scraped from the upcoming-events listing.
type Task struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Course string `json:"course"`
	Date   string `json:"date"`

	// HeadingDate is the bucket the task was found in. It is the group key
	// and so is not repeated inside each serialized task.
	HeadingDate string `json:"-"`
}

// TaskGroup maps a bucket heading to its tasks in page order. Keys keep the
// order in which buckets first received a task.
type TaskGroup struct {
	keys    []string
	buckets map[string][]Task
}

// Add appends task to the bucket named by its HeadingDate.
func (g *TaskGroup) Add(task Task) {
	if g.buckets == nil {
		g.buckets = make(map[string][]Task)
	}
	if _, ok := g.buckets[task.HeadingDate]; !ok {
		g.keys = append(g.keys, task.HeadingDate)
	}
	g.buckets[task.HeadingDate] = append(g.buckets[task.HeadingDate], task)
}

// Keys returns the bucket headings in insertion order.
func (g *TaskGroup) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Tasks returns the tasks of one bucket.
func (g *TaskGroup) Tasks(heading string) []Task {
	return g.buckets[heading]
}

// Has reports whether a bucket received at least one task.
func (g *TaskGroup) Has(heading string) bool {
	_, ok := g.buckets[heading]
	return ok
}

// Len returns the total number of tasks across all buckets.
func (g *TaskGroup) Len() int {
	n := 0
	for _, tasks := range g.buckets {
		n += len(tasks)
	}
	return n
}

// MarshalJSON encodes the group as an object whose keys follow insertion order.
func (g TaskGroup) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(g.buckets[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FetchResult is the outcome of one successful invocation.
type FetchResult struct {
	User  string    `json:"username"`
	Tasks TaskGroup `json:"tasks"`
}
