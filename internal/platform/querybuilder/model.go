package querybuilder

import (
	"errors"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
)

// columnMapper matches the default sqlx mapper, so inserted columns line up with scanned ones.
var columnMapper = reflectx.NewMapperFunc("db", strings.ToLower)

// InsertModel inserts the top-level mapped fields of a struct (or pointer to one).
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	v := reflect.Indirect(reflect.ValueOf(model))
	if !v.IsValid() {
		return "", nil, errors.New("insert model: nil model")
	}
	if v.Kind() != reflect.Struct {
		return "", nil, errors.New("insert model: model is not a struct")
	}

	fields := columnMapper.TypeMap(v.Type()).Index
	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, fi := range fields {
		if len(fi.Index) != 1 || fi.Name == "" {
			continue
		}
		cols = append(cols, fi.Name)
		vals = append(vals, v.Field(fi.Index[0]).Interface())
	}
	if len(cols) == 0 {
		return "", nil, errors.New("insert model: no mapped columns")
	}

	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}
