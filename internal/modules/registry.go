package modules

import (
	"github.com/yashika-63/ESG-Analytics/internal/pipeline"
)

// Raw header labels as they appear in the upstream sustainability
// exports. Matching is exact and case-sensitive by contract: a renamed
// column upstream is a registry change here, not a silent drop.
const (
	hdrSrNo          = "Sr.No."
	hdrFinancialYear = "Financial Year"
	hdrMonth         = "Month"
	hdrBusinessCode  = "Business Code"
	hdrPlant         = "Plant"
	hdrDepartment    = "Department"
	hdrAttribute     = "Attribute"
	hdrParameter     = "Parameter"
	hdrSubCategory   = "Sub Category"
	hdrType          = "Type"
	hdrQuantity      = "Quantity"
	hdrConvFactor    = "Conv. Factor"
	hdrValue         = "Value"
)

// baseMapping returns the column dictionary shared by every export,
// merged with the module's own columns. Each call returns a fresh map;
// module schemas never share storage.
func baseMapping(extra map[string]string) map[string]string {
	m := map[string]string{
		hdrSrNo:          "srNo",
		hdrFinancialYear: "financialYear",
		hdrMonth:         "month",
		hdrBusinessCode:  "businessCode",
		hdrPlant:         "plant",
		hdrDepartment:    "department",
		hdrAttribute:     "attribute",
		hdrParameter:     "parameter",
		hdrSubCategory:   "subCategory",
		hdrType:          "type",
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func numericSet(keys ...string) map[string]bool {
	s := make(map[string]bool, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

// quantitySchema is the measurement shape most modules share: a
// quantity, a conversion factor, and a derived value.
func quantitySchema() pipeline.Schema {
	return pipeline.Schema{
		Mapping: baseMapping(map[string]string{
			hdrQuantity:   "quantity",
			hdrConvFactor: "convFactor",
			hdrValue:      "value",
		}),
		NumericFields: numericSet("quantity", "convFactor", "value"),
		Derived: []pipeline.DerivedField{
			{Key: "value", Left: "quantity", Right: "convFactor"},
		},
	}
}

func scanPolicy() pipeline.HeaderPolicy {
	return pipeline.HeaderPolicy{
		Mode:     pipeline.HeaderScan,
		Required: []string{hdrFinancialYear, hdrMonth, hdrAttribute, hdrQuantity},
	}
}

// fixedPolicy matches exports with a constant five-row title block.
func fixedPolicy() pipeline.HeaderPolicy {
	return pipeline.HeaderPolicy{Mode: pipeline.HeaderFixed, RowIndex: 4}
}

// consumptionSeries is the standard chart set for quantity-shaped
// modules: totals by attribute, a monthly trend, and top consumers.
func consumptionSeries() []SeriesSpec {
	return []SeriesSpec{
		{
			Name:     "byAttribute",
			GroupBy:  pipeline.GroupBy{Fields: []string{"attribute"}},
			Measures: pipeline.MeasureSpec{Sums: []string{"quantity", "value"}},
		},
		{
			Name:    "monthlyTrend",
			GroupBy: pipeline.GroupBy{Fields: []string{"month", "financialYear"}},
			Measures: pipeline.MeasureSpec{
				Sums: []string{"quantity", "value"},
				Ratios: []pipeline.RatioSpec{
					{Name: "valuePerUnit", Numerator: "value", Denominator: "quantity"},
				},
			},
		},
		{
			Name:    "topPlants",
			GroupBy: pipeline.GroupBy{Fields: []string{"plant"}},
			Measures: pipeline.MeasureSpec{
				Sums: []string{"value"},
				TopN: &pipeline.TopNSpec{N: 5, Measure: "value"},
			},
		},
	}
}

// recordsQuery selects one module's rows with columns aliased to
// canonical keys. $1 is the financial-year filter; empty matches all.
func recordsQuery(table string, measures string) string {
	return `SELECT financial_year AS "financialYear", month, business_code AS "businessCode",
       plant, department, attribute, parameter, sub_category AS "subCategory", type, ` + measures + `
  FROM ` + table + `
 WHERE ($1 = '' OR financial_year = $1)`
}

// DefaultConfigs returns the registered dashboard modules. Adding a
// dashboard is adding an entry here; no pipeline code changes.
func DefaultConfigs() []Config {
	quantityMeasures := `quantity, conv_factor AS "convFactor", value`

	quantityModule := func(key, name, table string) Config {
		return Config{
			Key:    key,
			Name:   name,
			Query:  recordsQuery(table, quantityMeasures),
			Schema: quantitySchema(),
			Header: scanPolicy(),
			Series: consumptionSeries(),
		}
	}

	return []Config{
		quantityModule("water", "Water Management", "water_records"),
		quantityModule("energy", "Energy Consumption", "energy_records"),
		quantityModule("emissions", "GHG Emissions", "emission_records"),
		quantityModule("waste", "Waste Management", "waste_records"),
		quantityModule("materials", "Material Sourcing", "material_records"),
		quantityModule("biodiversity", "Biodiversity", "biodiversity_records"),

		{
			Key:   "diversity",
			Name:  "Workforce Diversity",
			Query: recordsQuery("diversity_records", `head_count AS "headCount"`),
			Schema: pipeline.Schema{
				Mapping: baseMapping(map[string]string{
					"Head Count": "headCount",
				}),
				NumericFields: numericSet("headCount"),
			},
			Header: fixedPolicy(),
			Series: []SeriesSpec{
				{
					Name:     "byDepartment",
					GroupBy:  pipeline.GroupBy{Fields: []string{"department"}},
					Measures: pipeline.MeasureSpec{Sums: []string{"headCount"}},
				},
				{
					Name:     "byType",
					GroupBy:  pipeline.GroupBy{Fields: []string{"type"}},
					Measures: pipeline.MeasureSpec{Sums: []string{"headCount"}},
				},
				{
					Name:    "byPlantAndType",
					GroupBy: pipeline.GroupBy{Fields: []string{"plant", "type"}},
					Measures: pipeline.MeasureSpec{
						Sums: []string{"headCount"},
					},
				},
			},
		},
		{
			Key:   "wages",
			Name:  "Wages & Benefits",
			Query: recordsQuery("wage_records", `total_wages AS "totalWages", employee_count AS "employeeCount"`),
			Schema: pipeline.Schema{
				Mapping: baseMapping(map[string]string{
					"Total Wages":    "totalWages",
					"Employee Count": "employeeCount",
				}),
				NumericFields: numericSet("totalWages", "employeeCount"),
			},
			Header: fixedPolicy(),
			Series: []SeriesSpec{
				{
					Name:    "byDepartment",
					GroupBy: pipeline.GroupBy{Fields: []string{"department"}},
					Measures: pipeline.MeasureSpec{
						Sums:     []string{"totalWages", "employeeCount"},
						Averages: []string{"totalWages"},
						Ratios: []pipeline.RatioSpec{
							{Name: "wagePerEmployee", Numerator: "totalWages", Denominator: "employeeCount"},
						},
					},
				},
				{
					Name:     "monthlyTrend",
					GroupBy:  pipeline.GroupBy{Fields: []string{"month", "financialYear"}},
					Measures: pipeline.MeasureSpec{Sums: []string{"totalWages"}},
				},
			},
		},
		{
			Key:   "safety",
			Name:  "Health & Safety",
			Query: recordsQuery("safety_records", `incident_count AS "incidentCount", hours_worked AS "hoursWorked"`),
			Schema: pipeline.Schema{
				Mapping: baseMapping(map[string]string{
					"Incident Count": "incidentCount",
					"Hours Worked":   "hoursWorked",
				}),
				NumericFields: numericSet("incidentCount", "hoursWorked"),
			},
			Header: scanPolicyFor(hdrFinancialYear, hdrMonth, hdrPlant, "Incident Count"),
			Series: []SeriesSpec{
				{
					Name:    "byPlant",
					GroupBy: pipeline.GroupBy{Fields: []string{"plant"}},
					Measures: pipeline.MeasureSpec{
						Sums: []string{"incidentCount", "hoursWorked"},
						Ratios: []pipeline.RatioSpec{
							{Name: "incidentRate", Numerator: "incidentCount", Denominator: "hoursWorked"},
						},
					},
				},
				{
					Name:     "monthlyTrend",
					GroupBy:  pipeline.GroupBy{Fields: []string{"month", "financialYear"}},
					Measures: pipeline.MeasureSpec{Sums: []string{"incidentCount"}},
				},
			},
		},
		{
			Key:   "training",
			Name:  "Training & Development",
			Query: recordsQuery("training_records", `training_hours AS "trainingHours", participant_count AS "participantCount"`),
			Schema: pipeline.Schema{
				Mapping: baseMapping(map[string]string{
					"Training Hours":    "trainingHours",
					"Participant Count": "participantCount",
				}),
				NumericFields: numericSet("trainingHours", "participantCount"),
			},
			Header: scanPolicyFor(hdrFinancialYear, hdrMonth, hdrDepartment, "Training Hours"),
			Series: []SeriesSpec{
				{
					Name:    "byDepartment",
					GroupBy: pipeline.GroupBy{Fields: []string{"department"}},
					Measures: pipeline.MeasureSpec{
						Sums:     []string{"trainingHours", "participantCount"},
						Averages: []string{"trainingHours"},
						Ratios: []pipeline.RatioSpec{
							{Name: "hoursPerParticipant", Numerator: "trainingHours", Denominator: "participantCount"},
						},
					},
				},
				{
					Name:    "topPrograms",
					GroupBy: pipeline.GroupBy{Fields: []string{"parameter"}},
					Measures: pipeline.MeasureSpec{
						Sums: []string{"trainingHours"},
						TopN: &pipeline.TopNSpec{N: 20, Measure: "trainingHours"},
					},
				},
			},
		},
		{
			Key:   "csr",
			Name:  "CSR Spending",
			Query: recordsQuery("csr_records", `amount`),
			Schema: pipeline.Schema{
				Mapping: baseMapping(map[string]string{
					"Amount": "amount",
				}),
				NumericFields: numericSet("amount"),
			},
			Header: scanPolicyFor(hdrFinancialYear, hdrMonth, hdrSubCategory, "Amount"),
			Series: []SeriesSpec{
				{
					Name:     "bySubCategory",
					GroupBy:  pipeline.GroupBy{Fields: []string{"subCategory"}},
					Measures: pipeline.MeasureSpec{Sums: []string{"amount"}},
				},
				{
					Name:    "topInitiatives",
					GroupBy: pipeline.GroupBy{Fields: []string{"parameter"}},
					Measures: pipeline.MeasureSpec{
						Sums: []string{"amount"},
						TopN: &pipeline.TopNSpec{N: 5, Measure: "amount"},
					},
				},
			},
		},
		{
			Key:   "compliance",
			Name:  "Regulatory Compliance",
			Query: recordsQuery("compliance_records", `compliant`),
			Schema: pipeline.Schema{
				Mapping: baseMapping(map[string]string{
					"Compliant": "compliant",
				}),
				NumericFields: numericSet(),
			},
			Header: scanPolicyFor(hdrFinancialYear, hdrMonth, hdrParameter, "Compliant"),
			Series: []SeriesSpec{
				{
					Name:    "byParameter",
					GroupBy: pipeline.GroupBy{Fields: []string{"parameter"}},
					Measures: pipeline.MeasureSpec{
						// "Y" marks a compliant filing; anything else
						// counts against the rate.
						Flags:    []pipeline.FlagSpec{{Name: "compliantCount", Field: "compliant", Equals: "Y"}},
						Averages: []string{"compliantCount"},
					},
				},
				{
					Name:    "byPlant",
					GroupBy: pipeline.GroupBy{Fields: []string{"plant"}},
					Measures: pipeline.MeasureSpec{
						Flags:    []pipeline.FlagSpec{{Name: "compliantCount", Field: "compliant", Equals: "Y"}},
						Averages: []string{"compliantCount"},
					},
				},
			},
		},
	}
}

func scanPolicyFor(labels ...string) pipeline.HeaderPolicy {
	return pipeline.HeaderPolicy{Mode: pipeline.HeaderScan, Required: labels}
}
