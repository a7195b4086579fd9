// =============================================================================
// Invoice Combiner - Canonical Roles and Column Mapping
// =============================================================================
//
// This package is the schema-inference engine: it decides which row of a raw
// grid is the header and which raw column plays which canonical role. The
// package is split by detection stage:
//
//   roles.go      - the Role enum and the per-file Mapping
//   header.go     - HeaderDetector: locate the true header row
//   classifier.go - Classifier: assign columns to roles by name + content
//   price.go      - PriceResolver: net-vs-gross disambiguation
//
// =============================================================================

package schema

// =============================================================================
// ROLE ENUM
// =============================================================================

// Role is a canonical column role. Every raw column ends up with exactly one
// role in the final mapping; columns the classifier cannot place stay
// Unclassified.
type Role int

const (
	RoleUnclassified Role = iota
	RoleEquipmentID
	RoleSessionID
	RoleCurrency
	RolePrice
	RoleVATRate
)

// String returns the role name used in reports and error messages.
func (r Role) String() string {
	switch r {
	case RoleEquipmentID:
		return "equipment_id"
	case RoleSessionID:
		return "session_id"
	case RoleCurrency:
		return "currency"
	case RolePrice:
		return "price"
	case RoleVATRate:
		return "vat_rate"
	default:
		return "unclassified"
	}
}

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// Mapping is the classification result for one file: role -> column index.
// It is built once per file and never mutated after the normalizer finalizes
// it. Price is only present after the resolver has run; until then the
// undecided monetary columns live in PriceCandidates.
type Mapping struct {
	// HeaderRow is the detected header row index.
	HeaderRow int

	// columns maps each assigned role to its column index.
	columns map[Role]int

	// PriceCandidates are the numeric columns whose header suggests a
	// monetary or rate quantity. The resolver consumes these.
	PriceCandidates []PriceCandidate
}

// PriceCandidate is one undecided monetary column with the alias signals the
// classifier saw in its header.
type PriceCandidate struct {
	// Index is the raw column index.
	Index int

	// Label is the original header label, used in error messages.
	Label string

	// MatchesNet is true when the header matches a net-price alias.
	MatchesNet bool

	// MatchesGross is true when the header matches a gross-price alias.
	MatchesGross bool

	// MatchesVAT is true when the header matches a VAT-rate alias.
	MatchesVAT bool
}

// NewMapping creates an empty mapping for the given header row.
func NewMapping(headerRow int) *Mapping {
	return &Mapping{
		HeaderRow: headerRow,
		columns:   make(map[Role]int),
	}
}

// Assign binds a role to a column index. Assigning the same role twice is a
// programming error upstream and the later assignment is ignored.
func (m *Mapping) Assign(role Role, col int) {
	if _, exists := m.columns[role]; exists {
		return
	}
	m.columns[role] = col
}

// Column returns the column index assigned to a role, and whether the role
// was assigned at all.
func (m *Mapping) Column(role Role) (int, bool) {
	col, ok := m.columns[role]
	return col, ok
}

// Assigned reports whether any role is already bound to the given column.
func (m *Mapping) Assigned(col int) bool {
	for _, c := range m.columns {
		if c == col {
			return true
		}
	}
	return false
}
