package dbx

// PreparedStatement represents a prepared statement query.
//
// Prepared statements are registered on every new pool connection, so they are available both
// to pool-bound and to transaction-bound executors. Execute them by passing the Name as the query.
type PreparedStatement struct {
	Name  string
	Query string
}

// NewPreparedStatement creates a new prepared statement.
func NewPreparedStatement(name, query string) PreparedStatement {
	return PreparedStatement{Name: name, Query: query}
}

// GetName returns the name of the prepared statement.
func (p PreparedStatement) GetName() string {
	return p.Name
}

// GetQuery returns the query of the prepared statement.
func (p PreparedStatement) GetQuery() string {
	return p.Query
}
