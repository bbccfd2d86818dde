package engine

import "github.com/dirdb/dirdb/internal/query"

// Aliases so callers outside the module can name the query types that
// appear in the façade's signatures.

// Op is a filter comparison operator.
type Op = query.Op

// Filter operators.
const (
	OpEq       = query.OpEq
	OpNe       = query.OpNe
	OpGt       = query.OpGt
	OpGte      = query.OpGte
	OpLt       = query.OpLt
	OpLte      = query.OpLte
	OpContains = query.OpContains
)

// ParseOp validates an operator name.
func ParseOp(s string) (Op, error) {
	return query.ParseOp(s)
}

// JoinOptions controls key prefixing of join rows.
type JoinOptions = query.JoinOptions

// Group is one group-by bucket.
type Group = query.Group
