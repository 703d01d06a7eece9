package todos

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
)

// Session is one raw session document together with its notes, untyped so
// the browser can show whatever fields the mobile app stored.
type Session struct {
	ID    string
	Data  map[string]any
	Notes []SessionNote
}

// SessionNote is one raw note document of a session.
type SessionNote struct {
	ID   string
	Data map[string]any
}

// FetchSessions retrieves every session document in collection along with
// its notes subcollection, in the store's natural document order.
func FetchSessions(ctx context.Context, client *firestore.Client, collection string) ([]Session, error) {
	docs, err := client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing collection %s: %w", collection, err)
	}

	var sessions []Session
	for _, doc := range docs {
		data := doc.Data()
		if data == nil {
			data = map[string]any{}
		}

		snapshots, err := doc.Ref.Collection(notesSubcollection).Documents(ctx).GetAll()
		if err != nil {
			return nil, fmt.Errorf("listing notes of %s: %w", doc.Ref.ID, err)
		}
		var notes []SessionNote
		for _, snapshot := range snapshots {
			noteData := snapshot.Data()
			if noteData == nil {
				noteData = map[string]any{}
			}
			notes = append(notes, SessionNote{ID: snapshot.Ref.ID, Data: noteData})
		}

		sessions = append(sessions, Session{ID: doc.Ref.ID, Data: data, Notes: notes})
	}

	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"sessions":   len(sessions),
	}).Debug("Fetched sessions")
	return sessions, nil
}

// Title derives a display title from the usual candidate fields with the
// document ID as last resort.
func (s Session) Title() string {
	title := firstNonEmpty(s.Data, "name", "title", "startedAt", "createdAt")
	if title == "" {
		title = s.ID
	}
	return title
}

// FieldLines renders the session's fields as sorted "key: value" lines,
// joining list values with commas.
func (s Session) FieldLines() []string {
	if len(s.Data) == 0 {
		return []string{"<empty>: <no fields>"}
	}

	keys := make([]string, 0, len(s.Data))
	for key := range s.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", key, renderFieldValue(s.Data[key])))
	}
	return lines
}

// Content returns the note's text body from the usual candidate fields.
func (n SessionNote) Content() string {
	content := firstNonEmpty(n.Data, "content", "text", "note")
	if content == "" {
		content = "<empty>"
	}
	return content
}

// Metadata renders every field that is not the note body as a sorted
// "key=value" list.
func (n SessionNote) Metadata() string {
	keys := make([]string, 0, len(n.Data))
	for key := range n.Data {
		switch key {
		case "content", "text", "note":
		default:
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "<no metadata>"
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, n.Data[key]))
	}
	return strings.Join(parts, ", ")
}

func renderFieldValue(value any) string {
	switch v := value.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
