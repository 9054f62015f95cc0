package task

import (
	"container/heap"
	"fmt"
	"slices"
	"strings"
)

// Order selects the sort key for List.
type Order string

const (
	// OrderPriority sorts by priority, then due date.
	OrderPriority Order = "priority"
	// OrderDueDate sorts by due date only.
	OrderDueDate Order = "due"
)

// ParseOrder converts a user-supplied sort key into an Order.
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "priority", "prio":
		return OrderPriority, nil
	case "due", "due_date", "date":
		return OrderDueDate, nil
	default:
		return "", fmt.Errorf("unknown order %q (want priority|due)", value)
	}
}

// Store holds pending tasks in priority order with a unique name index.
// It is not safe for concurrent use.
type Store struct {
	queue queue
	index map[string]*entry
}

// NewStore creates an empty task store.
func NewStore() *Store {
	return &Store{index: make(map[string]*entry)}
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	return len(s.queue)
}

// Get returns a copy of the named task.
func (s *Store) Get(name string) (Task, bool) {
	e, ok := s.index[name]
	if !ok {
		return Task{}, false
	}
	return e.task.clone(), true
}

// Add validates a draft and inserts the resulting task.
func (s *Store) Add(d Draft) (Task, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Task{}, &ValidationError{Field: "name", Value: d.Name, Reason: "must not be empty"}
	}
	if _, ok := s.index[name]; ok {
		return Task{}, &DuplicateError{Name: name}
	}
	t, err := d.Parse()
	if err != nil {
		return Task{}, err
	}
	s.push(t)
	return t.clone(), nil
}

// Insert adds an already-parsed task.
func (s *Store) Insert(t Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Value: t.Name, Reason: "must not be empty"}
	}
	if _, ok := s.index[t.Name]; ok {
		return &DuplicateError{Name: t.Name}
	}
	s.push(t.clone())
	return nil
}

// Complete removes the named task unless another task depends on it.
func (s *Store) Complete(name string) (Task, error) {
	e, ok := s.index[name]
	if !ok {
		return Task{}, &NotFoundError{Name: name}
	}
	for _, other := range s.queue {
		if other.task.Name != name && other.task.DependsOn(name) {
			return Task{}, &DependencyConflictError{Name: name, BlockedBy: other.task.Name}
		}
	}
	s.remove(e)
	return e.task, nil
}

// Dependents returns the names of every task that lists name as a
// dependency, in storage order.
func (s *Store) Dependents(name string) []string {
	var out []string
	for _, e := range s.queue {
		if e.task.Name != name && e.task.DependsOn(name) {
			out = append(out, e.task.Name)
		}
	}
	return out
}

// Peek returns the most urgent task without removing it.
func (s *Store) Peek() (Task, error) {
	if len(s.queue) == 0 {
		return Task{}, ErrEmpty
	}
	return s.queue[0].task.clone(), nil
}

// Tasks returns a snapshot in internal storage order.
func (s *Store) Tasks() []Task {
	out := make([]Task, 0, len(s.queue))
	for _, e := range s.queue {
		out = append(out, e.task.clone())
	}
	return out
}

// List returns every task sorted by the given order.
func (s *Store) List(order Order) []Task {
	out := s.Tasks()
	slices.SortStableFunc(out, compareTasks)
	if order == OrderDueDate {
		slices.SortStableFunc(out, func(a, b Task) int {
			return a.DueDate.Compare(b.DueDate)
		})
	}
	return out
}

func (s *Store) push(t Task) {
	e := &entry{task: t}
	heap.Push(&s.queue, e)
	s.index[t.Name] = e
}

func (s *Store) remove(e *entry) {
	heap.Remove(&s.queue, e.index)
	delete(s.index, e.task.Name)
}

// discard removes a task without the dependency check.
func (s *Store) discard(name string) {
	if e, ok := s.index[name]; ok {
		s.remove(e)
	}
}

func compareTasks(a, b Task) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}
