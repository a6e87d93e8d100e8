package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	tk, err := New(Fields{Text: "write report"})
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "write report", tk.Text)
	assert.Equal(t, localDate(time.Now()), tk.DueDate)
	assert.Equal(t, PriorityMedium, tk.Priority)
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.CompletedAt)
	assert.Empty(t, tk.Subtasks)

	require.Len(t, tk.History, 1)
	assert.Equal(t, ActionCreated, tk.History[0].Action)
	assert.Equal(t, "Task created", tk.History[0].Details)
}

func TestNew_EmptyTextRejected(t *testing.T) {
	_, err := New(Fields{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tk, err := New(Fields{Text: "x"})
		require.NoError(t, err)
		assert.False(t, seen[tk.ID])
		seen[tk.ID] = true
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"example.com", "https://example.com"},
		{"https://foo", "https://foo"},
		{"http://foo", "http://foo"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeURL(tc.in), "input %q", tc.in)
	}
}

func TestToggleComplete_RoundTrip(t *testing.T) {
	tk, err := New(Fields{Text: "pay invoice"})
	require.NoError(t, err)

	tk.ToggleComplete()
	assert.True(t, tk.Completed)
	require.NotNil(t, tk.CompletedAt)

	tk.ToggleComplete()
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.CompletedAt)

	// created + completed + uncompleted
	require.Len(t, tk.History, 3)
	assert.Equal(t, ActionCompleted, tk.History[1].Action)
	assert.Equal(t, "Task marked as complete", tk.History[1].Details)
	assert.Equal(t, ActionUncompleted, tk.History[2].Action)
	assert.Equal(t, "Task marked as incomplete", tk.History[2].Details)
}

func TestUpdate_NoopPatch(t *testing.T) {
	tk, err := New(Fields{Text: "call client", Priority: PriorityHigh})
	require.NoError(t, err)

	assert.False(t, tk.Update(Patch{}))

	same := tk.Text
	pri := PriorityHigh
	assert.False(t, tk.Update(Patch{Text: &same, Priority: &pri}))
	assert.Len(t, tk.History, 1)
}

func TestUpdate_RecordsOnlyChangedFields(t *testing.T) {
	tk, err := New(Fields{Text: "old text", Priority: PriorityHigh})
	require.NoError(t, err)

	next := "new text"
	pri := PriorityHigh
	assert.True(t, tk.Update(Patch{Text: &next, Priority: &pri}))

	assert.Equal(t, "new text", tk.Text)
	require.Len(t, tk.History, 2)
	entry := tk.History[1]
	assert.Equal(t, ActionModified, entry.Action)
	assert.Equal(t, "Changes: text: old text → new text", entry.Details)
}

func TestUpdate_MultipleFieldsOneEntry(t *testing.T) {
	tk, err := New(Fields{Text: "a", Client: "acme"})
	require.NoError(t, err)

	text := "b"
	client := "globex"
	notes := "ping before noon"
	assert.True(t, tk.Update(Patch{Text: &text, Client: &client, Notes: &notes}))

	require.Len(t, tk.History, 2)
	assert.Equal(t,
		"Changes: text: a → b, client: acme → globex, notes:  → ping before noon",
		tk.History[1].Details)
}

func TestSubtasks(t *testing.T) {
	tk, err := New(Fields{Text: "release"})
	require.NoError(t, err)

	st1 := tk.AddSubtask("tag build")
	st2 := tk.AddSubtask("write notes")
	require.Len(t, tk.Subtasks, 2)
	assert.NotEqual(t, st1.ID, st2.ID)
	assert.Equal(t, "tag build", tk.Subtasks[0].Text)

	assert.True(t, tk.ToggleSubtask(st2.ID))
	assert.True(t, tk.Subtasks[1].Completed)
	assert.False(t, tk.ToggleSubtask("missing"))

	last := tk.History[len(tk.History)-1]
	assert.Equal(t, ActionSubtaskToggled, last.Action)
	assert.Equal(t, `Subtask "write notes" completed`, last.Details)

	assert.True(t, tk.RemoveSubtask(st1.ID))
	require.Len(t, tk.Subtasks, 1)
	assert.Equal(t, "write notes", tk.Subtasks[0].Text)
	assert.False(t, tk.RemoveSubtask(st1.ID))
}

func TestNormalize_RepairsLoadedTask(t *testing.T) {
	tk := Task{
		ID:        "t1",
		Text:      "legacy",
		Completed: true,
		CreatedAt: time.Now(),
	}
	normalize(&tk)

	assert.NotNil(t, tk.Subtasks)
	require.NotEmpty(t, tk.History)
	assert.Equal(t, ActionCreated, tk.History[0].Action)
	assert.Equal(t, PriorityMedium, tk.Priority)
	assert.NotNil(t, tk.CompletedAt)

	tk.Completed = false
	normalize(&tk)
	assert.Nil(t, tk.CompletedAt)
}
