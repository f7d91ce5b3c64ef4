package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

var jsonb = jsoniter.ConfigCompatibleWithStandardLibrary

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func encodeJSONB(v any) ([]byte, error) {
	return jsonb.Marshal(v)
}

// decodeJSONB treats an empty or NULL column as the zero value.
func decodeJSONB(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return jsonb.Unmarshal(raw, v)
}

// jsonColumn carries JSONB as text so lib/pq does not send it as bytea.
type jsonColumn []byte

func (j jsonColumn) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = jsonColumn(v)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
	return nil
}
