package grandjeu

import "sort"

// Catalog is the ordered list of challenges of a game.
type Catalog []Challenge

// NewCatalog copies cs and sorts it by ID.
func NewCatalog(cs []Challenge) Catalog {
	out := make(Catalog, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find returns the challenge with the given ID.
func (c Catalog) Find(id int) (Challenge, bool) {
	for _, ch := range c {
		if ch.ID == id {
			return ch, true
		}
	}
	return Challenge{}, false
}

// LastID is the highest challenge ID, or 0 for an empty catalog.
func (c Catalog) LastID() int {
	last := 0
	for _, ch := range c {
		if ch.ID > last {
			last = ch.ID
		}
	}
	return last
}

// NextID is the ID a newly created challenge receives.
func (c Catalog) NextID() int { return c.LastID() + 1 }

// Points sums the points of the challenges in ids. IDs that are no longer in
// the catalog count for nothing.
func (c Catalog) Points(ids []int) int {
	total := 0
	for _, id := range ids {
		if ch, ok := c.Find(id); ok {
			total += ch.Points
		}
	}
	return total
}

// Total is the number of points available in the catalog.
func (c Catalog) Total() int {
	total := 0
	for _, ch := range c {
		total += ch.Points
	}
	return total
}
