package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeKind identifies the mutation recorded by a Change
type ChangeKind string

const (
	// ChangeSignup is recorded when an email is added to a roster
	ChangeSignup ChangeKind = "signup"
	// ChangeUnregister is recorded when an email is removed from a roster
	ChangeUnregister ChangeKind = "unregister"
)

// Change is the receipt of a successful signup or unregister.
type Change struct {
	ID           string
	Kind         ChangeKind
	Activity     string
	Email        string
	Participants int
	Capacity     int
	At           time.Time
}

// Registry is the authoritative in-memory set of activities.
// All methods are safe for concurrent use; each mutation runs its
// checks and its write under a single lock.
type Registry struct {
	mu         sync.RWMutex
	names      []string
	activities map[string]*Activity
	policy     Policy
	now        func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithPolicy replaces the whole enrollment policy
func WithPolicy(p Policy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithCapacityEnforcement toggles the capacity check
func WithCapacityEnforcement(enabled bool) Option {
	return func(r *Registry) {
		r.policy.EnforceCapacity = enabled
	}
}

// WithEmailValidation toggles the email syntax check
func WithEmailValidation(enabled bool) Option {
	return func(r *Registry) {
		r.policy.ValidateEmail = enabled
	}
}

// WithClock sets the time source used for Change timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New builds a registry from seed activities.
// Seeds must have unique non-empty names, a positive capacity and a roster
// without duplicates. When capacity is enforced the roster must also fit, and
// when emails are validated every seeded participant must be a valid address.
func New(seeds []Seed, opts ...Option) (*Registry, error) {
	r := &Registry{
		names:      make([]string, 0, len(seeds)),
		activities: make(map[string]*Activity, len(seeds)),
		policy:     DefaultPolicy(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	for i, seed := range seeds {
		if err := r.validateSeed(seed); err != nil {
			return nil, fmt.Errorf("seed[%d]: %w", i, err)
		}
		if _, exists := r.activities[seed.Name]; exists {
			return nil, fmt.Errorf("seed[%d]: duplicate activity name '%s'", i, seed.Name)
		}
		a := seed.Activity.Clone()
		r.names = append(r.names, seed.Name)
		r.activities[seed.Name] = &a
	}

	return r, nil
}

func (r *Registry) validateSeed(seed Seed) error {
	if strings.TrimSpace(seed.Name) == "" {
		return fmt.Errorf("activity name is required")
	}
	if seed.Activity.MaxParticipants <= 0 {
		return fmt.Errorf("activity '%s': max_participants must be positive, got %d",
			seed.Name, seed.Activity.MaxParticipants)
	}

	seen := make(map[string]struct{}, len(seed.Activity.Participants))
	for _, email := range seed.Activity.Participants {
		if _, dup := seen[email]; dup {
			return fmt.Errorf("activity '%s': duplicate participant '%s'", seed.Name, email)
		}
		seen[email] = struct{}{}

		if r.policy.ValidateEmail {
			if err := ValidateEmail(email); err != nil {
				return fmt.Errorf("activity '%s': %w", seed.Name, err)
			}
		}
	}

	if r.policy.EnforceCapacity && len(seed.Activity.Participants) > seed.Activity.MaxParticipants {
		return fmt.Errorf("activity '%s': %d participants exceed capacity of %d",
			seed.Name, len(seed.Activity.Participants), seed.Activity.MaxParticipants)
	}

	return nil
}

// Policy returns the enrollment policy in effect
func (r *Registry) Policy() Policy {
	return r.policy
}

// List returns a snapshot of every activity in seed order
func (r *Registry) List() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seeds := make([]Seed, 0, len(r.names))
	for _, name := range r.names {
		seeds = append(seeds, Seed{Name: name, Activity: *r.activities[name]})
	}
	return NewCatalog(seeds)
}

// Get returns a copy of the named activity
func (r *Registry) Get(name string) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}
	return a.Clone(), nil
}

// Signup adds email to the named activity.
// Checks run in order: activity exists, email syntax, not yet enrolled, capacity.
func (r *Registry) Signup(name, email string) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}

	if r.policy.ValidateEmail {
		if err := ValidateEmail(email); err != nil {
			return Change{}, err
		}
	}

	if a.HasParticipant(email) {
		return Change{}, fmt.Errorf("%w: %s in %s", ErrAlreadySignedUp, email, name)
	}

	if r.policy.EnforceCapacity && len(a.Participants) >= a.MaxParticipants {
		return Change{}, fmt.Errorf("%w: %s has %d of %d places taken",
			ErrActivityFull, name, len(a.Participants), a.MaxParticipants)
	}

	a.Participants = append(a.Participants, email)
	return r.change(ChangeSignup, name, email, a), nil
}

// Unregister removes email from the named activity, keeping the order of the rest
func (r *Registry) Unregister(name, email string) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}

	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return Change{}, fmt.Errorf("%w: %s in %s", ErrParticipantNotFound, email, name)
	}

	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	return r.change(ChangeUnregister, name, email, a), nil
}

func (r *Registry) change(kind ChangeKind, name, email string, a *Activity) Change {
	return Change{
		ID:           uuid.NewString(),
		Kind:         kind,
		Activity:     name,
		Email:        email,
		Participants: len(a.Participants),
		Capacity:     a.MaxParticipants,
		At:           r.now().UTC(),
	}
}
