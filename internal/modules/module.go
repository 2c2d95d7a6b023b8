package modules

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/yashika-63/ESG-Analytics/internal/pipeline"
	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

// Config is one dashboard module, declared as data. A renamed upstream
// column or an incoherent measure is caught by Validate at startup, not
// discovered as a silently empty chart in production.
type Config struct {
	Key  string `validate:"required,lowercase,alphanum"`
	Name string `validate:"required"`

	// Query is the parameterized SQL that backs API-sourced loads. The
	// backend aliases columns to canonical keys, so store rows arrive
	// pre-mapped. Empty for upload-only modules.
	Query string

	Schema pipeline.Schema       `validate:"-"`
	Header pipeline.HeaderPolicy `validate:"-"`

	Series []SeriesSpec `validate:"required,min=1,dive"`
}

// SeriesSpec is one named chart series the module exposes: a grouping
// plus the measures folded per group.
type SeriesSpec struct {
	Name     string `validate:"required"`
	GroupBy  pipeline.GroupBy
	Measures pipeline.MeasureSpec
}

// Info converts the config into its wire descriptor.
func (c Config) Info() domain.ModuleInfo {
	source := "upload"
	if c.Query != "" {
		source = "store"
	}
	return domain.ModuleInfo{Key: c.Key, Name: c.Name, Source: source}
}

var validate = validator.New()

// Validate checks structural tags plus cross-field coherence the tags
// cannot express: scan policies must require labels the mapping knows,
// and every grouping field and measure must resolve to a mapped key.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("module %s: %w", c.Key, err)
	}

	if len(c.Schema.Mapping) == 0 {
		return fmt.Errorf("module %s: empty field mapping", c.Key)
	}

	canonical := make(map[string]bool, len(c.Schema.Mapping))
	for _, key := range c.Schema.Mapping {
		canonical[key] = true
	}
	for _, d := range c.Schema.Derived {
		canonical[d.Key] = true
	}

	if c.Header.Mode == pipeline.HeaderScan {
		if len(c.Header.Required) == 0 {
			return fmt.Errorf("module %s: scan header policy with no required labels", c.Key)
		}
		for _, label := range c.Header.Required {
			if _, ok := c.Schema.Mapping[label]; !ok {
				return fmt.Errorf("module %s: required header %q missing from field mapping", c.Key, label)
			}
		}
	}

	for _, s := range c.Series {
		if len(s.GroupBy.Fields) == 0 {
			return fmt.Errorf("module %s: series %s has no grouping fields", c.Key, s.Name)
		}
		for _, f := range s.GroupBy.Fields {
			if !canonical[f] {
				return fmt.Errorf("module %s: series %s groups by unmapped field %q", c.Key, s.Name, f)
			}
		}
		for _, f := range measureFields(s.Measures) {
			if !canonical[f] && !flagName(s.Measures, f) {
				return fmt.Errorf("module %s: series %s measures unmapped field %q", c.Key, s.Name, f)
			}
			if canonical[f] && !c.Schema.IsNumeric(f) {
				return fmt.Errorf("module %s: series %s measures non-numeric field %q", c.Key, s.Name, f)
			}
		}
		if s.Measures.TopN != nil && s.Measures.TopN.N <= 0 {
			return fmt.Errorf("module %s: series %s has non-positive top-N", c.Key, s.Name)
		}
	}
	return nil
}

func measureFields(m pipeline.MeasureSpec) []string {
	var fields []string
	fields = append(fields, m.Sums...)
	fields = append(fields, m.Averages...)
	for _, r := range m.Ratios {
		fields = append(fields, r.Numerator, r.Denominator)
	}
	return fields
}

func flagName(m pipeline.MeasureSpec, field string) bool {
	for _, f := range m.Flags {
		if f.Name == field {
			return true
		}
	}
	return false
}

// Registry is the immutable set of configured modules.
type Registry struct {
	byKey map[string]Config
	order []string
}

// NewRegistry validates every config and indexes them by key.
func NewRegistry(configs []Config) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Config, len(configs))}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byKey[c.Key]; dup {
			return nil, fmt.Errorf("duplicate module key %s", c.Key)
		}
		r.byKey[c.Key] = c
		r.order = append(r.order, c.Key)
	}
	sort.Strings(r.order)
	return r, nil
}

// Get returns the module config for key.
func (r *Registry) Get(key string) (Config, bool) {
	c, ok := r.byKey[key]
	return c, ok
}

// List returns descriptors for every module, sorted by key.
func (r *Registry) List() []domain.ModuleInfo {
	infos := make([]domain.ModuleInfo, 0, len(r.order))
	for _, key := range r.order {
		infos = append(infos, r.byKey[key].Info())
	}
	return infos
}
