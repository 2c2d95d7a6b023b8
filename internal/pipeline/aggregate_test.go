package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

func rec(fields map[string]any) domain.Record {
	r := make(domain.Record, len(fields))
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestAggregateGrouping(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"attribute": "Water", "quantity": 100.0}),
		rec(map[string]any{"attribute": "Energy", "quantity": 50.0}),
		rec(map[string]any{"attribute": "Water", "quantity": 200.0}),
		rec(map[string]any{"attribute": "Waste", "quantity": 10.0}),
	}
	spec := MeasureSpec{Sums: []string{"quantity"}}

	groups, overview := Aggregate(records, GroupBy{Fields: []string{"attribute"}}.Func(), spec)

	require.Len(t, groups, 3, "one group per distinct key")
	assert.Equal(t, "Water", groups[0].Key, "first-seen order")
	assert.Equal(t, "Energy", groups[1].Key)
	assert.Equal(t, "Waste", groups[2].Key)

	assert.Equal(t, 300.0, groups[0].Totals["quantity"])
	assert.Equal(t, 2, groups[0].Count)

	// Sum of group counts equals the input length.
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	assert.Equal(t, len(records), total)

	// Overview totals from the same pass match the group totals.
	var groupSum float64
	for _, g := range groups {
		groupSum += g.Totals["quantity"]
	}
	assert.Equal(t, groupSum, overview.Totals["quantity"])
	assert.Equal(t, len(records), overview.Records)
}

func TestAggregateMissingFieldGroupsUnderUnknown(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"department": "HR", "headcount": 5.0}),
		rec(map[string]any{"headcount": 3.0}),
		rec(map[string]any{"department": "", "headcount": 2.0}),
	}

	groups, _ := Aggregate(records, GroupBy{Fields: []string{"department"}}.Func(),
		MeasureSpec{Sums: []string{"headcount"}})

	require.Len(t, groups, 2)
	assert.Equal(t, "HR", groups[0].Key)
	assert.Equal(t, UnknownKey, groups[1].Key)
	assert.Equal(t, 5.0, groups[1].Totals["headcount"], "both incomplete records share the Unknown bucket")
	assert.Equal(t, 2, groups[1].Count)
}

func TestAggregateCompositeKey(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"month": "January", "financialYear": "2024", "value": 10.0}),
		rec(map[string]any{"month": "January", "financialYear": "2024", "value": 5.0}),
		rec(map[string]any{"month": "January", "financialYear": "2025", "value": 7.0}),
	}

	groupBy := GroupBy{Fields: []string{"month", "financialYear"}, Delimiter: "|"}
	groups, _ := AggregateFields(records, groupBy.Fields, groupBy.Func(), MeasureSpec{Sums: []string{"value"}})

	require.Len(t, groups, 2)
	assert.Equal(t, "January|2024", groups[0].Key)
	assert.Equal(t, 15.0, groups[0].Totals["value"])
	assert.Equal(t, "January", groups[0].Fields["month"])
	assert.Equal(t, "2024", groups[0].Fields["financialYear"])
	assert.Equal(t, "January|2025", groups[1].Key)
}

func TestAggregateAverages(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"plant": "A", "wage": 100.0}),
		rec(map[string]any{"plant": "A", "wage": 200.0}),
	}

	groups, overview := Aggregate(records, GroupBy{Fields: []string{"plant"}}.Func(),
		MeasureSpec{Averages: []string{"wage"}})

	require.Len(t, groups, 1)
	assert.Equal(t, 150.0, groups[0].Averages["wage"])
	assert.Equal(t, 150.0, overview.Averages["wage"])
}

func TestAggregateAverageWithZeroCount(t *testing.T) {
	groups, overview := Aggregate(nil, GroupBy{Fields: []string{"plant"}}.Func(),
		MeasureSpec{Averages: []string{"wage"}})

	assert.Empty(t, groups)
	assert.Equal(t, 0.0, overview.Averages["wage"])
}

func TestAggregateRatios(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"type": "Diesel", "value": 100.0, "quantity": 20.0}),
		rec(map[string]any{"type": "Diesel", "value": 50.0, "quantity": 5.0}),
		rec(map[string]any{"type": "Solar", "value": 30.0, "quantity": 0.0}),
	}
	spec := MeasureSpec{
		Sums:   []string{"value", "quantity"},
		Ratios: []RatioSpec{{Name: "valuePerUnit", Numerator: "value", Denominator: "quantity"}},
	}

	groups, overview := Aggregate(records, GroupBy{Fields: []string{"type"}}.Func(), spec)

	require.Len(t, groups, 2)
	assert.Equal(t, 6.0, groups[0].Ratios["valuePerUnit"])
	assert.Equal(t, 0.0, groups[1].Ratios["valuePerUnit"], "zero denominator guards to 0")
	assert.Equal(t, 7.2, overview.Ratios["valuePerUnit"])
}

func TestAggregateFlags(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"plant": "A", "compliant": "Y"}),
		rec(map[string]any{"plant": "A", "compliant": "N"}),
		rec(map[string]any{"plant": "A", "compliant": "Y"}),
	}
	spec := MeasureSpec{
		Flags:    []FlagSpec{{Name: "compliantCount", Field: "compliant", Equals: "Y"}},
		Averages: []string{"compliantCount"},
	}

	groups, overview := Aggregate(records, GroupBy{Fields: []string{"plant"}}.Func(), spec)

	require.Len(t, groups, 1)
	assert.Equal(t, 2.0, groups[0].Totals["compliantCount"])
	assert.InDelta(t, 2.0/3.0, groups[0].Averages["compliantCount"], 1e-9)
	assert.Equal(t, 2.0, overview.Totals["compliantCount"])
}

func TestAggregateTopN(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"type": "A", "value": 10.0}),
		rec(map[string]any{"type": "B", "value": 40.0}),
		rec(map[string]any{"type": "C", "value": 20.0}),
		rec(map[string]any{"type": "D", "value": 40.0}),
		rec(map[string]any{"type": "E", "value": 5.0}),
	}
	spec := MeasureSpec{
		Sums: []string{"value"},
		TopN: &TopNSpec{N: 3, Measure: "value"},
	}

	groups, overview := Aggregate(records, GroupBy{Fields: []string{"type"}}.Func(), spec)

	require.Len(t, groups, 3)
	assert.Equal(t, "B", groups[0].Key, "ties broken by first-seen order")
	assert.Equal(t, "D", groups[1].Key)
	assert.Equal(t, "C", groups[2].Key)

	// Truncation does not touch the overview.
	assert.Equal(t, 115.0, overview.Totals["value"])
	assert.Equal(t, 5, overview.Records)
}

func TestAggregateTopNFewerGroupsThanN(t *testing.T) {
	records := []domain.Record{
		rec(map[string]any{"type": "A", "value": 1.0}),
		rec(map[string]any{"type": "B", "value": 2.0}),
	}
	spec := MeasureSpec{Sums: []string{"value"}, TopN: &TopNSpec{N: 5, Measure: "value"}}

	groups, _ := Aggregate(records, GroupBy{Fields: []string{"type"}}.Func(), spec)
	assert.Len(t, groups, 2)
}

// End-to-end: grid in, chart-ready series out, per the canonical
// upload shape (four filler rows, then the header, then data).
func TestGridToAggregationEndToEnd(t *testing.T) {
	grid := [][]any{
		{"Sustainability Report"},
		{"FY 2024"},
		{},
		{"Exported", "2024-04-01"},
		{"Sr.No.", "Financial Year", "Month", "Attribute", "Quantity"},
		{1, "2024", "January", "Water", 100},
		{2, "2024", "January", "Water", 200},
	}

	policy := HeaderPolicy{
		Mode:     HeaderScan,
		Required: []string{"Sr.No.", "Financial Year", "Month", "Attribute", "Quantity"},
	}

	res, err := FromGrid(grid, waterTestSchema, policy)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 100.0, res.Records[0].Num("quantity"))
	assert.Equal(t, 200.0, res.Records[1].Num("quantity"))

	groups, overview := Aggregate(res.Records, GroupBy{Fields: []string{"attribute"}}.Func(),
		MeasureSpec{Sums: []string{"quantity"}})

	require.Len(t, groups, 1)
	assert.Equal(t, "Water", groups[0].Key)
	assert.Equal(t, 300.0, groups[0].Totals["quantity"])
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 300.0, overview.Totals["quantity"])
}
