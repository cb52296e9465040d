// Package perm defines the permission vocabulary and resolves effective
// permission levels for actors.
package perm

import (
	"errors"
	"fmt"
)

// Category is a named permission domain with its own ordered level hierarchy.
type Category string

// Permission categories. The vocabulary is closed and part of the public
// contract: adding a weaker level at the bottom of a hierarchy is backward
// compatible, reordering or renaming is a breaking change.
const (
	CategoryRecords       Category = "records"
	CategoryInbox         Category = "inbox"
	CategoryTasks         Category = "tasks"
	CategoryReporting     Category = "reporting"
	CategoryTeam          Category = "team"
	CategoryConfiguration Category = "configuration"
	CategoryAudit         Category = "audit"
	CategoryCredentials   Category = "credentials"
)

// Level is a named point in a category's ordered hierarchy.
type Level string

// Permission levels. Not every level is a member of every category; see
// BuiltinTables for the per-category hierarchies.
const (
	LevelNone    Level = "none"
	LevelView    Level = "view"
	LevelEditOwn Level = "edit_own"
	LevelEdit    Level = "edit"
	LevelFull    Level = "full"
	LevelSend    Level = "send"
	LevelManage  Level = "manage"
)

// Role identifies one of the fixed team-member roles.
type Role string

// Team member roles.
const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleAgent    Role = "agent"
)

// Errors for vocabulary violations. These indicate a programming error (a
// handler asked about a category or level that does not exist), not bad
// user input.
var (
	ErrUnknownCategory = errors.New("perm: unknown category")
	ErrUnknownLevel    = errors.New("perm: unknown level")
	ErrUnknownRole     = errors.New("perm: unknown role")
)

// Tables holds the static permission tables. They are passed by reference
// so tests can substitute alternate vocabularies without touching process
// state.
type Tables struct {
	// Hierarchy maps each category to its levels ordered weakest first.
	Hierarchy map[Category][]Level
	// RoleDefaults maps role -> category -> default level. Pairs absent
	// from the table resolve to LevelNone, never to an error.
	RoleDefaults map[Role]map[Category]Level
}

// BuiltinTables returns the production permission tables.
func BuiltinTables() *Tables {
	return &Tables{
		Hierarchy: map[Category][]Level{
			CategoryRecords:       {LevelNone, LevelView, LevelEditOwn, LevelEdit, LevelFull},
			CategoryInbox:         {LevelNone, LevelView, LevelSend, LevelManage},
			CategoryTasks:         {LevelNone, LevelView, LevelEditOwn, LevelEdit, LevelFull},
			CategoryReporting:     {LevelNone, LevelView, LevelFull},
			CategoryTeam:          {LevelNone, LevelView, LevelManage},
			CategoryConfiguration: {LevelNone, LevelView, LevelManage},
			CategoryAudit:         {LevelNone, LevelView},
			CategoryCredentials:   {LevelNone, LevelView, LevelManage},
		},
		RoleDefaults: map[Role]map[Category]Level{
			RoleOwner: {
				CategoryRecords:       LevelFull,
				CategoryInbox:         LevelManage,
				CategoryTasks:         LevelFull,
				CategoryReporting:     LevelFull,
				CategoryTeam:          LevelManage,
				CategoryConfiguration: LevelManage,
				CategoryAudit:         LevelView,
				CategoryCredentials:   LevelManage,
			},
			RoleManager: {
				CategoryRecords:   LevelEdit,
				CategoryInbox:     LevelManage,
				CategoryTasks:     LevelEdit,
				CategoryReporting: LevelView,
				CategoryTeam:      LevelView,
				CategoryAudit:     LevelView,
			},
			RoleOperator: {
				CategoryRecords: LevelEditOwn,
				CategoryInbox:   LevelSend,
				CategoryTasks:   LevelEditOwn,
			},
			RoleAgent: {
				CategoryRecords: LevelEdit,
				CategoryInbox:   LevelSend,
				CategoryTasks:   LevelEdit,
			},
		},
	}
}

// Categories returns every category in the hierarchy. Order is unspecified.
func (t *Tables) Categories() []Category {
	cats := make([]Category, 0, len(t.Hierarchy))
	for c := range t.Hierarchy {
		cats = append(cats, c)
	}
	return cats
}

// LevelIndex returns the position of level within the category's ordered
// hierarchy. Comparison of levels is always by index within one category,
// never by string equality or across categories.
func (t *Tables) LevelIndex(cat Category, level Level) (int, error) {
	levels, ok := t.Hierarchy[cat]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	for i, l := range levels {
		if l == level {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in category %q", ErrUnknownLevel, level, cat)
}

// RoleDefault returns the default level for a role in a category. A known
// role with no tabulated entry for a known category resolves to LevelNone.
func (t *Tables) RoleDefault(role Role, cat Category) (Level, error) {
	if _, ok := t.Hierarchy[cat]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	defaults, ok := t.RoleDefaults[role]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if level, ok := defaults[cat]; ok {
		return level, nil
	}
	return LevelNone, nil
}
