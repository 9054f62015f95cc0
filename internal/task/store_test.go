package task

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(name, priority, due string, deps ...string) Draft {
	return Draft{Name: name, Priority: priority, DueDate: due, Dependencies: deps}
}

func names(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func TestStoreAdd_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft Draft
		field string
	}{
		{name: "empty name", draft: draft("", "1", "2025-06-01"), field: "name"},
		{name: "whitespace name", draft: draft("   ", "1", "2025-06-01"), field: "name"},
		{name: "non-integer priority", draft: draft("a", "high", "2025-06-01"), field: "priority"},
		{name: "float priority", draft: draft("a", "1.5", "2025-06-01"), field: "priority"},
		{name: "malformed date", draft: draft("a", "1", "01/06/2025"), field: "due_date"},
		{name: "impossible date", draft: draft("a", "1", "2025-02-30"), field: "due_date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := NewStore()
			_, err := s.Add(tc.draft)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, s.Len())
		})
	}
}

func TestStoreAdd_DuplicateLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("feed-cats", "2", "2025-06-01"))
	require.NoError(t, err)
	before := s.Tasks()

	_, err = s.Add(draft("feed-cats", "1", "2025-01-01", "other"))
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "feed-cats", dup.Name)
	assert.Equal(t, before, s.Tasks())
}

func TestStoreAdd_DuplicateCheckedBeforePriority(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("a", "1", "2025-06-01"))
	require.NoError(t, err)

	_, err = s.Add(draft("a", "not-a-number", "2025-06-01"))
	var dup *DuplicateError
	assert.ErrorAs(t, err, &dup)
}

func TestStoreAdd_TrimsNameAndKeepsDanglingDependencies(t *testing.T) {
	t.Parallel()

	s := NewStore()
	added, err := s.Add(draft("  groom  ", " 3 ", "2025-06-02", "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, "groom", added.Name)
	assert.Equal(t, 3, added.Priority)
	assert.Equal(t, []string{"does-not-exist"}, added.Dependencies)

	got, ok := s.Get("groom")
	require.True(t, ok)
	assert.Equal(t, "2025-06-02", got.DueString())
}

func TestStorePeek(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Peek()
	require.ErrorIs(t, err, ErrEmpty)

	_, err = s.Add(draft("b", "2", "2025-06-01"))
	require.NoError(t, err)
	_, err = s.Add(draft("a", "1", "2025-06-10"))
	require.NoError(t, err)
	_, err = s.Add(draft("c", "1", "2025-06-05"))
	require.NoError(t, err)

	next, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, "c", next.Name)
	assert.Equal(t, 3, s.Len())
}

func TestStorePeek_AlwaysMinimum(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	s := NewStore()
	for i := 0; i < 200; i++ {
		d := draft(
			fmt.Sprintf("task-%03d", i),
			fmt.Sprint(rng.Intn(10)),
			fmt.Sprintf("2025-%02d-%02d", rng.Intn(12)+1, rng.Intn(28)+1),
		)
		_, err := s.Add(d)
		require.NoError(t, err)

		if i%3 == 0 {
			victim := fmt.Sprintf("task-%03d", rng.Intn(i+1))
			_, err := s.Complete(victim)
			var notFound *NotFoundError
			if err != nil {
				require.ErrorAs(t, err, &notFound)
			}
		}

		if s.Len() == 0 {
			continue
		}
		next, err := s.Peek()
		require.NoError(t, err)
		for _, other := range s.Tasks() {
			require.False(t, Less(other, next), "%s should not precede peeked %s", other.Name, next.Name)
		}
	}
}

func TestStoreComplete(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Complete("missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)

	_, err = s.Add(draft("a", "1", "2025-06-01"))
	require.NoError(t, err)
	_, err = s.Add(draft("b", "2", "2025-06-01"))
	require.NoError(t, err)

	done, err := s.Complete("a")
	require.NoError(t, err)
	assert.Equal(t, "a", done.Name)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)

	// The name is free again.
	_, err = s.Add(draft("a", "5", "2025-07-01"))
	require.NoError(t, err)
}

func TestStoreComplete_DependencyConflict(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("base", "1", "2025-06-01"))
	require.NoError(t, err)
	_, err = s.Add(draft("x", "2", "2025-06-01", "base"))
	require.NoError(t, err)
	_, err = s.Add(draft("y", "3", "2025-06-01", "other", "base"))
	require.NoError(t, err)

	_, err = s.Complete("base")
	var conflict *DependencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "base", conflict.Name)
	assert.Contains(t, []string{"x", "y"}, conflict.BlockedBy)
	assert.ElementsMatch(t, []string{"x", "y"}, s.Dependents("base"))
	assert.Equal(t, 3, s.Len())

	_, err = s.Complete("x")
	require.NoError(t, err)
	_, err = s.Complete("base")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "y", conflict.BlockedBy)

	_, err = s.Complete("y")
	require.NoError(t, err)
	_, err = s.Complete("base")
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestStoreComplete_SelfDependencyDoesNotBlock(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("loop", "1", "2025-06-01", "loop"))
	require.NoError(t, err)

	_, err = s.Complete("loop")
	assert.NoError(t, err)
}

func TestStoreList(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("p3", "3", "2025-06-01"))
	require.NoError(t, err)
	_, err = s.Add(draft("p1", "1", "2025-06-20"))
	require.NoError(t, err)
	_, err = s.Add(draft("p2", "2", "2025-06-10"))
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2", "p3"}, names(s.List(OrderPriority)))
	assert.Equal(t, []string{"p3", "p2", "p1"}, names(s.List(OrderDueDate)))
	assert.Equal(t, 3, s.Len())
	assert.Empty(t, NewStore().List(OrderPriority))
}

func TestStoreList_PriorityTiesBrokenByDueDate(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("late", "1", "2025-09-01"))
	require.NoError(t, err)
	_, err = s.Add(draft("early", "1", "2025-03-01"))
	require.NoError(t, err)
	_, err = s.Add(draft("urgent", "0", "2025-12-01"))
	require.NoError(t, err)

	assert.Equal(t, []string{"urgent", "early", "late"}, names(s.List(OrderPriority)))
}

func TestStoreTasks_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Add(draft("a", "1", "2025-06-01", "dep"))
	require.NoError(t, err)

	snapshot := s.Tasks()
	snapshot[0].Dependencies[0] = "changed"

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"dep"}, got.Dependencies)
}

func TestStoreInsert_Duplicate(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.NoError(t, s.Insert(New("a", 1, mustDate(t, "2025-06-01"), nil)))
	err := s.Insert(New("a", 2, mustDate(t, "2025-06-02"), nil))
	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	order, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderPriority, order)

	order, err = ParseOrder("Due")
	require.NoError(t, err)
	assert.Equal(t, OrderDueDate, order)

	_, err = ParseOrder("name")
	assert.Error(t, err)
}

func TestSplitDependencies(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{}, SplitDependencies(""))
	assert.Equal(t, []string{"a", "b"}, SplitDependencies(" a , ,b,"))
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDate(value)
	require.NoError(t, err)
	return d
}
