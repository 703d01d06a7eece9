package todos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTitleFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    string
	}{
		{
			name:    "name field wins",
			session: Session{ID: "s1", Data: map[string]any{"name": "Groceries", "title": "Other"}},
			want:    "Groceries",
		},
		{
			name:    "startedAt before createdAt",
			session: Session{ID: "s1", Data: map[string]any{"startedAt": "2026-05-01", "createdAt": "2026-04-01"}},
			want:    "2026-05-01",
		},
		{
			name:    "document id as last resort",
			session: Session{ID: "s1", Data: map[string]any{}},
			want:    "s1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.session.Title())
		})
	}
}

func TestSessionFieldLines(t *testing.T) {
	session := Session{
		ID: "s1",
		Data: map[string]any{
			"name":  "Groceries",
			"tags":  []any{"home", "weekly"},
			"count": 3,
		},
	}

	assert.Equal(t, []string{
		"count: 3",
		"name: Groceries",
		"tags: home, weekly",
	}, session.FieldLines())
}

func TestSessionFieldLinesEmpty(t *testing.T) {
	session := Session{ID: "s1"}
	assert.Equal(t, []string{"<empty>: <no fields>"}, session.FieldLines())
}

func TestSessionNoteContent(t *testing.T) {
	assert.Equal(t, "Buy milk", SessionNote{Data: map[string]any{"content": "Buy milk"}}.Content())
	assert.Equal(t, "Call home", SessionNote{Data: map[string]any{"text": "Call home"}}.Content())
	assert.Equal(t, "<empty>", SessionNote{Data: map[string]any{"type": "todo"}}.Content())
}

func TestSessionNoteMetadata(t *testing.T) {
	note := SessionNote{
		ID: "n1",
		Data: map[string]any{
			"content": "Buy milk",
			"type":    "todo",
			"done":    false,
		},
	}
	assert.Equal(t, "done=false, type=todo", note.Metadata())

	bare := SessionNote{ID: "n2", Data: map[string]any{"content": "Only text"}}
	assert.Equal(t, "<no metadata>", bare.Metadata())
}
