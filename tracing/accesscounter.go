package tracing

import "sync"

// AccessCounter counts the records of each kind at each location.
type AccessCounter struct {
	lock   sync.Mutex
	keys   []counterKey
	counts map[counterKey]uint64
}

type counterKey struct {
	where, what string
}

// NewAccessCounter creates a new AccessCounter.
func NewAccessCounter() *AccessCounter {
	return &AccessCounter{counts: make(map[counterKey]uint64)}
}

// Trace counts the record.
func (c *AccessCounter) Trace(r Record) {
	c.lock.Lock()
	defer c.lock.Unlock()

	k := counterKey{where: r.Where, what: r.What}
	if _, ok := c.counts[k]; !ok {
		c.keys = append(c.keys, k)
	}

	c.counts[k]++
}

// Count returns the number of records of a kind at a location.
func (c *AccessCounter) Count(where, what string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.counts[counterKey{where: where, what: what}]
}

// Total returns the number of records of a kind at all the locations.
func (c *AccessCounter) Total(what string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	var n uint64

	for k, count := range c.counts {
		if k.what == what {
			n += count
		}
	}

	return n
}

// Locations returns the locations that produced records, in the order they
// were first seen.
func (c *AccessCounter) Locations() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	seen := make(map[string]bool)

	var locations []string

	for _, k := range c.keys {
		if !seen[k.where] {
			seen[k.where] = true
			locations = append(locations, k.where)
		}
	}

	return locations
}
