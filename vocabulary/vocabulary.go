package vocabulary

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a display name has no entry in a vocabulary.
var ErrNotFound = errors.New("value not in vocabulary")

// Vocabulary maps lowercase display names to stable EOSC identifiers for
// one vocabulary axis. Keys are stored lowercase; Lookup lowercases its
// input, so all comparisons are case-insensitive.
type Vocabulary struct {
	axis   string
	values map[string]string
}

// New builds a Vocabulary for the given axis. Display-name keys are
// lowercased on insertion.
func New(axis string, values map[string]string) Vocabulary {
	lowered := make(map[string]string, len(values))
	for name, id := range values {
		lowered[strings.ToLower(name)] = id
	}
	return Vocabulary{axis: axis, values: lowered}
}

// Axis returns the vocabulary axis name, e.g. "access-mode".
func (v Vocabulary) Axis() string { return v.axis }

// Len returns the number of entries.
func (v Vocabulary) Len() int { return len(v.values) }

// Lookup resolves a display name to its identifier. The lookup is
// case-insensitive. A failed lookup wraps ErrNotFound with the axis and the
// offending name.
func (v Vocabulary) Lookup(name string) (string, error) {
	id, ok := v.values[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%s vocabulary: %q: %w", v.axis, name, ErrNotFound)
	}
	return id, nil
}

// Contains reports whether the display name is present, case-insensitively.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.values[strings.ToLower(name)]
	return ok
}

// Names returns the sorted lowercase display names. Used for diagnostics.
func (v Vocabulary) Names() []string {
	names := make([]string, 0, len(v.values))
	for name := range v.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hierarchy is a parent/child vocabulary pair plus the child-id to
// parent-id mapping. Child display names are not globally unique, so the
// child vocabulary is keyed by the composite "<parent name>.<child name>".
type Hierarchy struct {
	Parents  Vocabulary
	Children Vocabulary
	ParentOf map[string]string
}

// Parent resolves a child id to its parent id.
func (h Hierarchy) Parent(childID string) (string, error) {
	parentID, ok := h.ParentOf[childID]
	if !ok {
		return "", fmt.Errorf("%s hierarchy: child id %q: %w", h.Parents.Axis(), childID, ErrNotFound)
	}
	return parentID, nil
}

// Validate checks the structural invariants: every parent id referenced by
// ParentOf exists in the parent vocabulary, and every child id in the child
// vocabulary has a parent mapping.
func (h Hierarchy) Validate() error {
	parentIDs := make(map[string]bool, h.Parents.Len())
	for _, name := range h.Parents.Names() {
		id, _ := h.Parents.Lookup(name)
		parentIDs[id] = true
	}
	for childID, parentID := range h.ParentOf {
		if !parentIDs[parentID] {
			return fmt.Errorf("%s hierarchy: parent id %q (of child %q) not in parent vocabulary",
				h.Parents.Axis(), parentID, childID)
		}
	}
	for _, name := range h.Children.Names() {
		childID, _ := h.Children.Lookup(name)
		if _, ok := h.ParentOf[childID]; !ok {
			return fmt.Errorf("%s hierarchy: child id %q has no parent mapping", h.Parents.Axis(), childID)
		}
	}
	return nil
}

// ProviderSet holds the ids of providers currently onboarded at EOSC.
type ProviderSet struct {
	ids map[string]bool
}

// NewProviderSet builds a ProviderSet from a list of provider ids.
func NewProviderSet(ids []string) ProviderSet {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return ProviderSet{ids: set}
}

// Contains reports whether the provider id is onboarded. Provider ids are
// already machine tokens, so the check is case-sensitive.
func (p ProviderSet) Contains(id string) bool { return p.ids[id] }

// Len returns the number of known provider ids.
func (p ProviderSet) Len() int { return len(p.ids) }

// Set is the immutable bundle of every vocabulary axis the mapping engine
// consumes. Build it once at startup and share it read-only; it is safe for
// concurrent use.
type Set struct {
	OrderTypes      Vocabulary
	AccessModes     Vocabulary
	AccessTypes     Vocabulary
	LifeCycleStatus Vocabulary
	FundingBodies   Vocabulary
	FundingPrograms Vocabulary
	TargetUsers     Vocabulary
	Countries       Vocabulary
	Domains         Hierarchy
	Categories      Hierarchy
	Providers       ProviderSet

	// Abbreviations maps a Blue-Cloud service name to the EOSC
	// abbreviation agreed for it. Not an EOSC vocabulary, but maintained
	// alongside them as versioned data.
	Abbreviations map[string]string
}

// Validate checks every hierarchy invariant in the set.
func (s *Set) Validate() error {
	if err := s.Domains.Validate(); err != nil {
		return err
	}
	if err := s.Categories.Validate(); err != nil {
		return err
	}
	return nil
}
