package store

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/storage"
)

// RoleColors is the fixed palette roles draw from at creation. The pick is
// random but the assigned color is immutable afterwards.
var RoleColors = []string{
	"#E74C3C", // red
	"#3498DB", // blue
	"#2ECC71", // green
	"#F1C40F", // yellow
	"#9B59B6", // purple
	"#FF6B9D", // pink
	"#6C63FF", // indigo
	"#F39C12", // orange
}

// ProfileStore owns the singleton profile: a bio and an ordered role
// collection, newest role first.
type ProfileStore struct {
	adapter storage.Adapter
	profile Profile

	now   func() time.Time
	newID func() string
	pick  func(n int) int
}

// NewProfileStore hydrates a profile store from the adapter.
func NewProfileStore(a storage.Adapter) (*ProfileStore, error) {
	s := &ProfileStore{
		adapter: a,
		now:     time.Now,
		newID:   uuid.NewString,
		pick:    rand.IntN,
	}
	if _, err := a.Load(storage.NamespaceProfile, &s.profile); err != nil {
		return nil, err
	}
	return s, nil
}

// persist writes the candidate profile and commits it on success.
func (s *ProfileStore) persist(next Profile) error {
	if err := s.adapter.SaveAll(storage.NamespaceProfile, next); err != nil {
		return err
	}
	s.profile = next
	return nil
}

// UpdateBio replaces the bio.
func (s *ProfileStore) UpdateBio(bio string) error {
	next := s.profile
	next.Bio = bio
	return s.persist(next)
}

// AddRole creates a role with a random palette color and prepends it. A
// name that is blank after trimming is declined as a no-op.
func (s *ProfileStore) AddRole(name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, nil
	}
	role := Role{
		ID:        s.newID(),
		Name:      name,
		Color:     RoleColors[s.pick(len(RoleColors))],
		CreatedAt: s.now(),
	}
	next := s.profile
	next.Roles = append([]Role{role}, slices.Clone(s.profile.Roles)...)
	if err := s.persist(next); err != nil {
		return Role{}, err
	}
	return role, nil
}

// ArchiveRole soft-removes the role: Archived is set and ArchivedAt
// stamped. Other roles are untouched; an unknown ID is a no-op.
func (s *ProfileStore) ArchiveRole(id string) error {
	now := s.now()
	return s.mapRole(id, func(r Role) Role {
		r.Archived = true
		r.ArchivedAt = &now
		return r
	})
}

// RestoreRole reverses an archive. ArchivedAt is cleared, not merely
// ignored.
func (s *ProfileStore) RestoreRole(id string) error {
	return s.mapRole(id, func(r Role) Role {
		r.Archived = false
		r.ArchivedAt = nil
		return r
	})
}

func (s *ProfileStore) mapRole(id string, fn func(Role) Role) error {
	next := s.profile
	next.Roles = slices.Clone(s.profile.Roles)
	for i, r := range next.Roles {
		if r.ID == id {
			next.Roles[i] = fn(r)
		}
	}
	return s.persist(next)
}

// DeleteRole permanently removes the role. Unlike archive this is
// irreversible. An unknown ID is a no-op.
func (s *ProfileStore) DeleteRole(id string) error {
	next := s.profile
	next.Roles = slices.DeleteFunc(slices.Clone(s.profile.Roles), func(r Role) bool {
		return r.ID == id
	})
	return s.persist(next)
}

// --- Reads ---

func (s *ProfileStore) Bio() string { return s.profile.Bio }

func (s *ProfileStore) Roles() []Role { return slices.Clone(s.profile.Roles) }

// ActiveRoles returns the unarchived roles in collection order.
func (s *ProfileStore) ActiveRoles() []Role {
	var out []Role
	for _, r := range s.profile.Roles {
		if !r.Archived {
			out = append(out, r)
		}
	}
	return out
}

// ArchivedRoles returns the archived roles in collection order.
func (s *ProfileStore) ArchivedRoles() []Role {
	var out []Role
	for _, r := range s.profile.Roles {
		if r.Archived {
			out = append(out, r)
		}
	}
	return out
}

// HasNoRoles reports whether no active role exists. The first-role prompt
// keys off this; it is derived on every call, never stored.
func (s *ProfileStore) HasNoRoles() bool {
	return len(s.ActiveRoles()) == 0
}

// RoleByID returns the role with the given ID, if present.
func (s *ProfileStore) RoleByID(id string) (Role, bool) {
	for _, r := range s.profile.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}
