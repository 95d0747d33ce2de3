package scraper

// fifo is a minimal FIFO queue used by the discovery crawls.
type fifo[T any] struct {
	items []T
}

func (q *fifo[T]) push(item T) {
	q.items = append(q.items, item)
}

func (q *fifo[T]) pop() T {
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

func (q *fifo[T]) empty() bool {
	return len(q.items) == 0
}

// orderedSet is a string set that remembers insertion order, so discovery
// output is deterministic for a given crawl order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// add inserts a value and reports whether it was new.
func (s *orderedSet) add(value string) bool {
	if _, ok := s.seen[value]; ok {
		return false
	}
	s.seen[value] = struct{}{}
	s.items = append(s.items, value)
	return true
}

func (s *orderedSet) has(value string) bool {
	_, ok := s.seen[value]
	return ok
}

func (s *orderedSet) len() int {
	return len(s.items)
}
