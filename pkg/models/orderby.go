package models

import "strings"

// OrderBy is an allow-listed sort specification for Findings Store list
// queries. It replaces the original service's pattern of ordering by a
// caller-supplied raw SQL fragment: the API boundary only ever sees one of
// these enumerated values, and ParseOrderBy is the single place untrusted
// string input is validated against the allow-list before it reaches a
// query.
type OrderBy string

const (
	OrderByDetectedAtDesc OrderBy = "detected_at DESC"
	OrderByDetectedAtAsc  OrderBy = "detected_at ASC"
	OrderBySeverityDesc   OrderBy = "severity DESC"
	OrderBySeverityAsc    OrderBy = "severity ASC"
	OrderByCategoryDesc   OrderBy = "category DESC"
	OrderByCategoryAsc    OrderBy = "category ASC"
	OrderByStatusDesc     OrderBy = "status DESC"
	OrderByStatusAsc      OrderBy = "status ASC"
	OrderByFileDesc       OrderBy = "file DESC"
	OrderByFileAsc        OrderBy = "file ASC"
	OrderByLoopDesc       OrderBy = "loop DESC"
	OrderByLoopAsc        OrderBy = "loop ASC"

	// DefaultOrderBy is substituted whenever a requested value falls outside
	// the allow-list, matching the original service's silent-fallback
	// behavior rather than rejecting the query outright.
	DefaultOrderBy OrderBy = OrderByDetectedAtDesc
)

var allowedOrderBy = map[string]OrderBy{
	string(OrderByDetectedAtDesc): OrderByDetectedAtDesc,
	string(OrderByDetectedAtAsc):  OrderByDetectedAtAsc,
	string(OrderBySeverityDesc):   OrderBySeverityDesc,
	string(OrderBySeverityAsc):    OrderBySeverityAsc,
	string(OrderByCategoryDesc):   OrderByCategoryDesc,
	string(OrderByCategoryAsc):    OrderByCategoryAsc,
	string(OrderByStatusDesc):     OrderByStatusDesc,
	string(OrderByStatusAsc):      OrderByStatusAsc,
	string(OrderByFileDesc):       OrderByFileDesc,
	string(OrderByFileAsc):        OrderByFileAsc,
	string(OrderByLoopDesc):       OrderByLoopDesc,
	string(OrderByLoopAsc):        OrderByLoopAsc,
}

// ParseOrderBy validates a raw, possibly untrusted order-by string against
// the allow-list, falling back to DefaultOrderBy on any mismatch rather than
// erroring. Matching is case-insensitive and tolerant of surrounding
// whitespace so "detected_at desc" and "DETECTED_AT DESC" both resolve.
func ParseOrderBy(raw string) OrderBy {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.Join(strings.Fields(normalized), " ")
	for key, ob := range allowedOrderBy {
		if strings.ToUpper(key) == normalized {
			return ob
		}
	}
	return DefaultOrderBy
}
