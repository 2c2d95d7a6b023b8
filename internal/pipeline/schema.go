package pipeline

// Schema describes how one module's raw columns normalize into
// canonical records. It is declared once per module in the registry and
// never mutated afterwards.
type Schema struct {
	// Mapping translates a raw column header label into a canonical
	// field key. Lookup is exact and case-sensitive; labels without an
	// entry are dropped, and their column values are discarded.
	Mapping map[string]string

	// NumericFields is the set of canonical keys whose values are
	// coerced to numbers. Every other mapped value is kept as a
	// trimmed string.
	NumericFields map[string]bool

	// Derived lists fields computed after mapping, as the product of
	// two numeric fields. A derived field already supplied with a
	// non-zero value by the source is left alone.
	Derived []DerivedField
}

// DerivedField computes Key = Left * Right when the source did not
// already provide Key.
type DerivedField struct {
	Key   string
	Left  string
	Right string
}

// MapHeader resolves a raw header label to its canonical key.
func (s Schema) MapHeader(label string) (string, bool) {
	key, ok := s.Mapping[label]
	return key, ok
}

// IsNumeric reports whether a canonical key is coerced numerically.
func (s Schema) IsNumeric(key string) bool {
	return s.NumericFields[key]
}

// HeaderMode selects how the loader locates the header row in a raw
// spreadsheet grid.
type HeaderMode string

const (
	// HeaderFixed places the header at a statically known row index;
	// used when the upstream export always carries a constant-size
	// title block above the table.
	HeaderFixed HeaderMode = "fixed"

	// HeaderScan searches the first rows of the grid for the first row
	// containing every required label, order-independent.
	HeaderScan HeaderMode = "scan"
)

// headerScanWindow bounds the scan to the first ten rows, indices 0
// through 9. Rows at index 10 or later are never header candidates;
// on shorter grids the row count caps the scan instead.
const headerScanWindow = 10

// HeaderPolicy configures header-row discovery for file-sourced loads.
type HeaderPolicy struct {
	Mode HeaderMode

	// RowIndex is the zero-based header row for HeaderFixed.
	RowIndex int

	// Required are the raw labels that must all appear as cell values
	// in a candidate row for HeaderScan to accept it.
	Required []string
}
