package perm

import (
	"errors"
	"testing"
)

// TestResolveRoleDefaults verifies resolution without overrides falls back
// to the role default for every category.
func TestResolveRoleDefaults(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	eff, err := r.Resolve(RoleManager, nil, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if got := eff[CategoryRecords]; got != LevelEdit {
		t.Errorf("records = %s, want %s", got, LevelEdit)
	}
	if got := eff[CategoryCredentials]; got != LevelNone {
		t.Errorf("credentials = %s, want %s (untabulated pair)", got, LevelNone)
	}
	if len(eff) != len(BuiltinTables().Hierarchy) {
		t.Errorf("effective map covers %d categories, want %d", len(eff), len(BuiltinTables().Hierarchy))
	}
}

// TestResolveActorOverride verifies a per-category actor override beats the
// role default, and only for that category.
func TestResolveActorOverride(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	eff, err := r.Resolve(RoleOperator, Overrides{CategoryRecords: LevelFull}, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if got := eff[CategoryRecords]; got != LevelFull {
		t.Errorf("records = %s, want %s", got, LevelFull)
	}
	if got := eff[CategoryTasks]; got != LevelEditOwn {
		t.Errorf("tasks = %s, want role default %s", got, LevelEditOwn)
	}
}

// TestResolveCredentialMapReplaces verifies the credential precedence
// property: a credential carrying its own permission map entirely replaces
// role-based resolution, with no merging against the actor override.
func TestResolveCredentialMapReplaces(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	// Role default edit_own, actor override full, credential map view:
	// the credential map wins outright.
	eff, err := r.Resolve(RoleOperator,
		Overrides{CategoryRecords: LevelFull},
		Overrides{CategoryRecords: LevelView})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if got := eff[CategoryRecords]; got != LevelView {
		t.Errorf("records = %s, want %s (credential map is sole source of truth)", got, LevelView)
	}
	// Categories absent from the credential map resolve to none, even
	// when the role default is stronger.
	if got := eff[CategoryInbox]; got != LevelNone {
		t.Errorf("inbox = %s, want %s", got, LevelNone)
	}
}

// TestResolveEmptyCredentialMap verifies a present-but-empty credential map
// still replaces resolution: everything becomes none.
func TestResolveEmptyCredentialMap(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	eff, err := r.Resolve(RoleOwner, nil, Overrides{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for cat, level := range eff {
		if level != LevelNone {
			t.Errorf("category %s = %s, want none", cat, level)
		}
	}
}

func TestResolveRejectsInvalidOverrideLevel(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	_, err := r.Resolve(RoleOwner, Overrides{CategoryAudit: LevelManage}, nil)
	if !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("expected ErrUnknownLevel for manage in audit hierarchy, got %v", err)
	}
}

// TestCheckWeakestAlwaysAllowed verifies that requiring the weakest level
// allows any effective level in the category.
func TestCheckWeakestAlwaysAllowed(t *testing.T) {
	t.Parallel()
	tables := BuiltinTables()
	r := NewResolver(tables)

	for cat, levels := range tables.Hierarchy {
		for _, level := range levels {
			ok, err := r.Check(Effective{cat: level}, cat, levels[0])
			if err != nil {
				t.Fatalf("Check(%s=%s, require %s) failed: %v", cat, level, levels[0], err)
			}
			if !ok {
				t.Errorf("Check(%s=%s, require weakest) = deny, want allow", cat, level)
			}
		}
	}
}

func TestCheckComparesByPosition(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	tests := []struct {
		name     string
		have     Level
		required Level
		want     bool
	}{
		{"equal level allows", LevelEdit, LevelEdit, true},
		{"stronger allows", LevelFull, LevelView, true},
		{"weaker denies", LevelView, LevelEdit, false},
		{"none denies view", LevelNone, LevelView, false},
		{"edit_own denies edit", LevelEditOwn, LevelEdit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := r.Check(Effective{CategoryRecords: tt.have}, CategoryRecords, tt.required)
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Check(have=%s, require=%s) = %v, want %v", tt.have, tt.required, ok, tt.want)
			}
		})
	}
}

func TestCheckUnknownRequiredLevel(t *testing.T) {
	t.Parallel()
	r := NewResolver(BuiltinTables())

	_, err := r.Check(Effective{CategoryAudit: LevelView}, CategoryAudit, LevelFull)
	if !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("expected ErrUnknownLevel, got %v", err)
	}
}

// TestResolverWithSubstituteTables verifies the tables are injected, not
// global: a resolver over an alternate vocabulary works independently.
func TestResolverWithSubstituteTables(t *testing.T) {
	t.Parallel()
	tables := &Tables{
		Hierarchy: map[Category][]Level{
			"widgets": {LevelNone, LevelView, LevelFull},
		},
		RoleDefaults: map[Role]map[Category]Level{
			RoleOwner: {"widgets": LevelFull},
		},
	}
	r := NewResolver(tables)

	eff, err := r.Resolve(RoleOwner, nil, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := eff["widgets"]; got != LevelFull {
		t.Errorf("widgets = %s, want full", got)
	}
	if _, ok := eff[CategoryRecords]; ok {
		t.Error("effective map should not contain categories outside the injected vocabulary")
	}
}
