package storage

import (
	"fmt"

	"github.com/maplecrm/records-api/internal/query"
)

// Paginated collection descriptors. IndexPriority must list only dimensions
// backed by a compound index in schema.go; the priority order puts the
// dimension that most commonly narrows the scan first.
var (
	LeadsCollection = query.Collection{
		Name:          "leads",
		IndexPriority: []string{"status", "owner_id", "source"},
		MaxLimit:      100,
		DefaultLimit:  25,
	}

	ContactsCollection = query.Collection{
		Name:          "contacts",
		IndexPriority: []string{"owner_id", "company"},
		MaxLimit:      100,
		DefaultLimit:  25,
	}

	ConversationsCollection = query.Collection{
		Name:          "conversations",
		IndexPriority: []string{"status", "assignee_id", "channel"},
		MaxLimit:      100,
		DefaultLimit:  25,
	}

	MessagesCollection = query.Collection{
		Name:          "messages",
		IndexPriority: []string{"conversation_id"},
		MaxLimit:      200,
		DefaultLimit:  50,
	}

	TasksCollection = query.Collection{
		Name:          "tasks",
		IndexPriority: []string{"status", "assignee_id", "kind"},
		MaxLimit:      100,
		DefaultLimit:  25,
	}

	AuditCollection = query.Collection{
		Name:          "audit",
		IndexPriority: []string{"actor_id", "action", "entity_type"},
		MaxLimit:      200,
		DefaultLimit:  50,
	}
)

// indexedColumn validates the indexed dimension against the set of columns
// the table actually indexes. The selector only promotes declared
// dimensions, so a miss here is a programming error rather than bad input.
func indexedColumn(c query.Collection, f *query.Filter) (string, error) {
	for _, dim := range c.IndexPriority {
		if f.Dim == dim {
			return dim, nil
		}
	}
	return "", fmt.Errorf("collection %s has no index on dimension %q", c.Name, f.Dim)
}

// pageWindow appends the cursor-seek bound and the ordering/limit tail to a
// page query. The scan resumes strictly after the cursor position in
// (created_at DESC, id DESC) order.
func pageWindow(after *query.Cursor, args []any, limit int) (string, []any) {
	clause := ""
	if after != nil {
		clause = " AND (created_at < ? OR (created_at = ? AND id < ?))"
		m := millis(after.CreatedAt)
		args = append(args, m, m, after.ID)
	}
	clause += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)
	return clause, args
}
