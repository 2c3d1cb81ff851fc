package schema

// Queue is the FIFO of pending elements of a Database.
// Removal compares element identity, never content.
type Queue struct {
	items []Element
}

// Enqueue appends elements to the tail
func (q *Queue) Enqueue(elements ...Element) {
	q.items = append(q.items, elements...)
}

// Dequeue removes and returns the head element
func (q *Queue) Dequeue() (Element, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return e, true
}

// Peek returns the head element without removing it
func (q *Queue) Peek() (Element, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len returns the number of pending elements
func (q *Queue) Len() int {
	return len(q.items)
}

// Elements returns a snapshot of the pending elements in queue order
func (q *Queue) Elements() []Element {
	out := make([]Element, len(q.items))
	copy(out, q.items)
	return out
}

// Remove deletes the first occurrence of e. Elements that merely look
// equal to e are kept.
func (q *Queue) Remove(e Element) bool {
	for i, item := range q.items {
		if item == e {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Filter deletes every element present in consumed and returns how many
// were removed. Order of the remaining elements is preserved.
func (q *Queue) Filter(consumed map[Element]struct{}) int {
	if len(consumed) == 0 {
		return 0
	}
	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if _, ok := consumed[item]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return removed
}

// Clear drops all pending elements
func (q *Queue) Clear() {
	q.items = nil
}
