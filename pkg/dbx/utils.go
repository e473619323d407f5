package dbx

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// GenerateRandomInt64Id generates a random, non-zero 64-bit ID.
//
// Every transaction opened by a Pool gets one, so log lines and metrics of a chained session can be
// correlated from begin to commit or rollback. crypto/rand is used so ids are not predictable.
func GenerateRandomInt64Id() int64 {
	var idNum uint64

	for idNum == 0 {
		if err := binary.Read(rand.Reader, binary.BigEndian, &idNum); err != nil {
			continue
		}

		idNum %= uint64(math.MaxInt64)
	}

	return int64(idNum)
}

// DeriveColumnNamesFromTags extracts column names from a struct's tags.
//
// Only exported fields carrying a non-empty tag other than "-" are reported, in declaration order.
// The result is what Executor.CopyFrom expects as its column list.
//
// Example:
//
//	type User struct {
//	    ID   uuid.UUID `db:"id"`
//	    Name string    `db:"name"`
//	}
//	columns, _ := DeriveColumnNamesFromTags(User{}, "db")
//	// columns would be: []string{"id", "name"}
func DeriveColumnNamesFromTags[T any](entity T, tagKey string) ([]string, error) {
	var columnNames []string

	t := reflect.TypeOf(entity)
	if t == nil {
		return nil, errors.New("expected a struct type")
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, errors.New("expected a struct type")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}

		columnNames = append(columnNames, tag)
	}

	return columnNames, nil
}

// StructsToRows converts a slice of structs to a [][]any for use with Executor.CopyFrom.
// It is the reflection based counterpart of EntitiesToRows, for types that do not implement RowConvertibleEntity.
func StructsToRows[T any](entities []T, tagKey string) ([][]any, error) {
	rows := make([][]any, 0, len(entities))

	for _, entity := range entities {
		v := reflect.ValueOf(entity)
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}

		if v.Kind() != reflect.Struct {
			return nil, errors.New("expected a struct type")
		}

		var row []any
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)

			tag := field.Tag.Get(tagKey)
			if tag == "" || tag == "-" || !field.IsExported() {
				continue
			}

			row = append(row, v.Field(i).Interface())
		}

		rows = append(rows, row)
	}

	return rows, nil
}
