package salesdash

type Condition string

const (
	CondIn    Condition = "in"
	CondNotIn Condition = "nin"

	CondGreaterOrEq Condition = ">="
	CondLessOrEq    Condition = "<="
)

// filter is one predicate of a WHERE clause.
type filter struct {
	Expression string
	Condition  Condition
	Values     []interface{}
}

// order is one ORDER BY term.
type order struct {
	Expression string
	Direction  string
}

// queryPlan describes a grouped projection of the base relation.
type queryPlan struct {
	Select  []string
	Filters []*filter
	Groups  []string
	SortBy  []*order
	Limit   int
}
