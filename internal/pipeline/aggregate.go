package pipeline

import (
	"sort"
	"strings"

	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

// UnknownKey is the bucket for records whose grouping field is missing
// or empty. Incomplete rows still contribute to totals instead of being
// dropped.
const UnknownKey = "Unknown"

// GroupBy derives the grouping key from one or more record fields.
// Composite keys join the component values with Delimiter; two records
// with the same joined string are the same group.
type GroupBy struct {
	Fields    []string
	Delimiter string
}

// KeyFunc derives a grouping key from a record.
type KeyFunc func(domain.Record) string

// Func returns the key function for this grouping. Each empty component
// resolves to UnknownKey.
func (g GroupBy) Func() KeyFunc {
	delim := g.Delimiter
	if delim == "" {
		delim = "-"
	}
	return func(rec domain.Record) string {
		parts := make([]string, len(g.Fields))
		for i, f := range g.Fields {
			parts[i] = groupComponent(rec, f)
		}
		return strings.Join(parts, delim)
	}
}

func groupComponent(rec domain.Record, field string) string {
	if s := rec.Str(field); s != "" {
		return s
	}
	// Numeric grouping components (e.g. a year stored as a number)
	// keep their rendered value rather than collapsing to Unknown.
	if v, ok := rec[field]; ok && !cellEmpty(v) {
		if s := cellString(v); s != "" {
			return s
		}
	}
	return UnknownKey
}

// MeasureSpec declares what the aggregation computes per group and for
// the overview.
type MeasureSpec struct {
	// Sums are numeric fields totalled per group.
	Sums []string

	// Averages are numeric fields reported as group total divided by
	// group count (0 when the count is 0). They are accumulated like
	// sums internally.
	Averages []string

	// Flags count records whose string field equals a literal, exposed
	// as a per-group total under Name. Used for indicator columns such
	// as a "Y"/"N" compliance flag.
	Flags []FlagSpec

	// Ratios are derived once per group after the fold, as
	// numeratorTotal / denominatorTotal, 0 when the denominator is 0.
	Ratios []RatioSpec

	// TopN, when set, sorts the groups descending by a measure total
	// and truncates. Ties keep first-seen order.
	TopN *TopNSpec
}

// FlagSpec counts records where Str(Field) == Equals.
type FlagSpec struct {
	Name   string
	Field  string
	Equals string
}

// RatioSpec derives Name = Totals[Numerator] / Totals[Denominator].
type RatioSpec struct {
	Name        string
	Numerator   string
	Denominator string
}

// TopNSpec truncates the sorted aggregation to its N largest groups by
// the named measure total.
type TopNSpec struct {
	N       int
	Measure string
}

// Aggregate folds records into per-group summaries plus whole-load
// overview totals, in one linear scan. Groups appear in first-seen
// order of their key. The fold never fails: every record lands in
// exactly one group.
func Aggregate(records []domain.Record, key KeyFunc, spec MeasureSpec) ([]domain.GroupSummary, domain.Overview) {
	return AggregateFields(records, nil, key, spec)
}

// AggregateFields is Aggregate with the grouping component fields
// carried onto each summary for chart binding. groupFields may be nil.
func AggregateFields(records []domain.Record, groupFields []string, key KeyFunc, spec MeasureSpec) ([]domain.GroupSummary, domain.Overview) {
	accumulated := accumulatedFields(spec)

	index := make(map[string]int)
	groups := make([]domain.GroupSummary, 0)
	overview := domain.Overview{Totals: make(map[string]float64)}

	for _, rec := range records {
		k := key(rec)
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			g := domain.GroupSummary{Key: k, Totals: make(map[string]float64)}
			if len(groupFields) > 0 {
				g.Fields = make(map[string]string, len(groupFields))
				for _, f := range groupFields {
					g.Fields[f] = groupComponent(rec, f)
				}
			}
			groups = append(groups, g)
		}

		groups[i].Count++
		overview.Records++
		for _, field := range accumulated {
			v := rec.Num(field)
			groups[i].Totals[field] += v
			overview.Totals[field] += v
		}
		for _, flag := range spec.Flags {
			if rec.Str(flag.Field) == flag.Equals {
				groups[i].Totals[flag.Name]++
				overview.Totals[flag.Name]++
			}
		}
	}

	for i := range groups {
		finishMeasures(&groups[i].Averages, &groups[i].Ratios, groups[i].Totals, groups[i].Count, spec)
	}
	finishMeasures(&overview.Averages, &overview.Ratios, overview.Totals, overview.Records, spec)

	if spec.TopN != nil {
		groups = topN(groups, *spec.TopN)
	}
	return groups, overview
}

// accumulatedFields collects every numeric field the fold must total:
// declared sums, averaged fields, and ratio operands.
func accumulatedFields(spec MeasureSpec) []string {
	seen := make(map[string]bool)
	var fields []string
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	for _, f := range spec.Sums {
		add(f)
	}
	for _, f := range spec.Averages {
		add(f)
	}
	for _, r := range spec.Ratios {
		add(r.Numerator)
		add(r.Denominator)
	}
	return fields
}

// finishMeasures derives averages and ratios from the folded totals.
func finishMeasures(averages, ratios *map[string]float64, totals map[string]float64, count int, spec MeasureSpec) {
	if len(spec.Averages) > 0 {
		*averages = make(map[string]float64, len(spec.Averages))
		for _, f := range spec.Averages {
			if count > 0 {
				(*averages)[f] = totals[f] / float64(count)
			} else {
				(*averages)[f] = 0
			}
		}
	}
	if len(spec.Ratios) > 0 {
		*ratios = make(map[string]float64, len(spec.Ratios))
		for _, r := range spec.Ratios {
			den := totals[r.Denominator]
			if den == 0 {
				(*ratios)[r.Name] = 0
				continue
			}
			(*ratios)[r.Name] = totals[r.Numerator] / den
		}
	}
}

// topN sorts descending by the measure total and truncates, keeping
// insertion order for ties.
func topN(groups []domain.GroupSummary, spec TopNSpec) []domain.GroupSummary {
	sorted := make([]domain.GroupSummary, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Totals[spec.Measure] > sorted[j].Totals[spec.Measure]
	})
	if spec.N > 0 && len(sorted) > spec.N {
		sorted = sorted[:spec.N]
	}
	return sorted
}
