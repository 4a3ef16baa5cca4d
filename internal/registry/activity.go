package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Activity is a single extracurricular offering and its roster.
type Activity struct {
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"`
	Participants    []string `json:"participants" yaml:"participants"`
}

// Clone returns a deep copy of the activity
func (a Activity) Clone() Activity {
	c := a
	c.Participants = slices.Clone(a.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	return c
}

// HasParticipant reports whether email is on the roster
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// SpotsLeft returns the number of free places, never below zero
func (a Activity) SpotsLeft() int {
	return max(a.MaxParticipants-len(a.Participants), 0)
}

// Seed is one activity definition used to build a registry.
type Seed struct {
	Name     string
	Activity Activity
}

// Catalog is an ordered, read-only snapshot of the registry.
// It encodes as a JSON object keyed by activity name, in seed order.
type Catalog struct {
	names      []string
	activities map[string]Activity
}

// NewCatalog builds a catalog from seeds, keeping their order
func NewCatalog(seeds []Seed) *Catalog {
	c := &Catalog{
		names:      make([]string, 0, len(seeds)),
		activities: make(map[string]Activity, len(seeds)),
	}
	for _, s := range seeds {
		if _, exists := c.activities[s.Name]; !exists {
			c.names = append(c.names, s.Name)
		}
		c.activities[s.Name] = s.Activity.Clone()
	}
	return c
}

// Names returns the activity names in seed order
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Get returns a copy of the named activity
func (c *Catalog) Get(name string) (Activity, bool) {
	a, ok := c.activities[name]
	if !ok {
		return Activity{}, false
	}
	return a.Clone(), true
}

// Len returns the number of activities
func (c *Catalog) Len() int {
	return len(c.names)
}

// Seeds returns the catalog as an ordered seed list
func (c *Catalog) Seeds() []Seed {
	seeds := make([]Seed, 0, len(c.names))
	for _, name := range c.names {
		seeds = append(seeds, Seed{Name: name, Activity: c.activities[name].Clone()})
	}
	return seeds
}

// MarshalJSON implements json.Marshaler
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.activities[name].Clone())
		if err != nil {
			return nil, fmt.Errorf("failed to encode activity %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog must be a JSON object")
	}

	var seeds []Seed
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected catalog key %v", tok)
		}
		var a Activity
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("failed to decode activity %q: %w", name, err)
		}
		seeds = append(seeds, Seed{Name: name, Activity: a})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = *NewCatalog(seeds)
	return nil
}
