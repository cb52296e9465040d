package perm

import "fmt"

// Overrides is a partial category -> level map. A key that is absent is
// distinct from a key explicitly set to LevelNone: absent falls through to
// the next resolution layer, LevelNone pins the category to the weakest
// level.
type Overrides map[Category]Level

// Effective is a fully resolved category -> level map covering every
// category in the vocabulary.
type Effective map[Category]Level

// Resolver computes effective permissions from the three override layers:
// credential permission map, actor-level override, role default.
type Resolver struct {
	tables *Tables
}

// NewResolver creates a Resolver over the given tables.
func NewResolver(t *Tables) *Resolver {
	return &Resolver{tables: t}
}

// Tables returns the permission tables the resolver was built with.
func (r *Resolver) Tables() *Tables {
	return r.tables
}

// Resolve computes the effective level for every category.
//
// When credPerms is non-nil it is a complete replacement permission map
// carried by the credential: it is the sole source of truth, categories
// absent from it resolve to LevelNone, and neither the actor override nor
// the role default is consulted. Otherwise each category resolves to the
// actor override when present, else the role default.
func (r *Resolver) Resolve(role Role, actorOverrides Overrides, credPerms Overrides) (Effective, error) {
	eff := make(Effective, len(r.tables.Hierarchy))

	if credPerms != nil {
		for cat := range r.tables.Hierarchy {
			if level, ok := credPerms[cat]; ok {
				if _, err := r.tables.LevelIndex(cat, level); err != nil {
					return nil, err
				}
				eff[cat] = level
			} else {
				eff[cat] = LevelNone
			}
		}
		return eff, nil
	}

	for cat := range r.tables.Hierarchy {
		if level, ok := actorOverrides[cat]; ok {
			if _, err := r.tables.LevelIndex(cat, level); err != nil {
				return nil, err
			}
			eff[cat] = level
			continue
		}
		level, err := r.tables.RoleDefault(role, cat)
		if err != nil {
			return nil, err
		}
		eff[cat] = level
	}
	return eff, nil
}

// Check reports whether the effective permissions satisfy the required
// level in the given category. Comparison is by position in the category's
// ordered hierarchy.
func (r *Resolver) Check(eff Effective, cat Category, required Level) (bool, error) {
	requiredIdx, err := r.tables.LevelIndex(cat, required)
	if err != nil {
		return false, err
	}
	have, ok := eff[cat]
	if !ok {
		// Effective maps produced by Resolve always cover every
		// category; a missing entry means the map was built against a
		// different vocabulary.
		return false, fmt.Errorf("%w: %q not resolved", ErrUnknownCategory, cat)
	}
	haveIdx, err := r.tables.LevelIndex(cat, have)
	if err != nil {
		return false, err
	}
	return haveIdx >= requiredIdx, nil
}
