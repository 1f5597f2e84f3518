// Package plan holds the subscription plan catalog. Plans are declarative
// and ship as a YAML file loaded at startup; tenant creation consults the
// catalog to validate the plan label and derive the trial window.
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrPlanNotFound   = errors.New("plan not found in catalog")
	ErrInvalidCatalog = errors.New("invalid plan catalog")
	ErrNoDefaultPlan  = errors.New("plan catalog has no default plan")
)

// Money is an amount in the smallest currency unit (cents for USD).
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// Plan describes one subscription tier and its constraints.
type Plan struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	TrialDays   int              `yaml:"trial_days"`
	Price       Money            `yaml:"price"`
	Interval    string           `yaml:"interval"` // none, monthly, annual
	Limits      map[string]int64 `yaml:"limits"`   // -1 means unlimited
	Features    []string         `yaml:"features"`
	Public      bool             `yaml:"public"` // available for self-service signup
}

// TrialEndsAt computes when a trial started at the given time ends.
// Returns nil for plans without a trial.
func (p Plan) TrialEndsAt(startedAt time.Time) *time.Time {
	if p.TrialDays <= 0 {
		return nil
	}
	ends := startedAt.AddDate(0, 0, p.TrialDays).UTC()
	return &ends
}

// Limit returns the limit for a resource, or -1 (unlimited) when the plan
// does not mention it.
func (p Plan) Limit(resource string) int64 {
	if v, ok := p.Limits[resource]; ok {
		return v
	}
	return -1
}

type catalogFile struct {
	Default string `yaml:"default"`
	Plans   []Plan `yaml:"plans"`
}

// Catalog is an immutable set of plans keyed by ID. Safe for concurrent
// reads after construction.
type Catalog struct {
	plans     map[string]Plan
	order     []string
	defaultID string
}

// Load parses a YAML catalog. The default plan must exist in the plan list.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("%w: no plans defined", ErrInvalidCatalog)
	}

	c := &Catalog{
		plans:     make(map[string]Plan, len(file.Plans)),
		defaultID: file.Default,
	}
	for _, p := range file.Plans {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: plan without id", ErrInvalidCatalog)
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan id %q", ErrInvalidCatalog, p.ID)
		}
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}

	if c.defaultID == "" {
		return nil, ErrNoDefaultPlan
	}
	if _, ok := c.plans[c.defaultID]; !ok {
		return nil, fmt.Errorf("%w: default plan %q not defined", ErrInvalidCatalog, c.defaultID)
	}

	return c, nil
}

// LoadFile loads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	defer f.Close()
	return Load(f)
}

// Get returns the plan with the given ID.
func (c *Catalog) Get(id string) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return p, nil
}

// Default returns the plan assigned to tenants created without an explicit
// plan.
func (c *Catalog) Default() Plan {
	return c.plans[c.defaultID]
}

// All returns the plans in declaration order.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}

// Public returns signup-visible plans in declaration order.
func (c *Catalog) Public() []Plan {
	var out []Plan
	for _, id := range c.order {
		if p := c.plans[id]; p.Public {
			out = append(out, p)
		}
	}
	return out
}
