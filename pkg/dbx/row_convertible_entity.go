package dbx

// RowConvertibleEntity defines an interface for converting a struct into a row of values for bulk insertion.
//
// The values returned by ToRow must follow the order of the struct fields carrying a `db` tag, which is
// the order DeriveColumnNamesFromTags reports the column names in.
//
// Example:
//
//	type Event struct {
//	    ID      uuid.UUID      `db:"id"`
//	    Name    string         `db:"name"`
//	    Payload map[string]any `db:"payload"`
//	}
//
//	func (e Event) ToRow() []any {
//	    return []any{e.ID, e.Name, e.Payload}
//	}
type RowConvertibleEntity interface {
	ToRow() []any
}

// EntitiesToRows converts a slice of RowConvertibleEntity into the [][]any expected by Executor.CopyFrom.
func EntitiesToRows[T RowConvertibleEntity](entities []T) [][]any {
	rows := make([][]any, 0, len(entities))
	for _, entity := range entities {
		rows = append(rows, entity.ToRow())
	}

	return rows
}
