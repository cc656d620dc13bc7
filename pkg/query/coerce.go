package query

import (
	"strconv"
	"time"

	"github.com/tabrest/tabrest/pkg/catalog"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts a raw query-string value to the column's declared type so
// the driver binds a correctly-typed parameter. Text and unknown kinds pass
// through unchanged.
func Coerce(col catalog.Column, raw string) (any, error) {
	switch col.Kind {
	case catalog.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &TypeMismatchError{Column: col.Name, Value: raw, Want: "integer"}
		}
		return n, nil
	case catalog.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &TypeMismatchError{Column: col.Name, Value: raw, Want: "float"}
		}
		return f, nil
	case catalog.KindBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &TypeMismatchError{Column: col.Name, Value: raw, Want: "boolean"}
		}
		return b, nil
	case catalog.KindDate:
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, &TypeMismatchError{Column: col.Name, Value: raw, Want: "date"}
		}
		return t, nil
	case catalog.KindTimestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, &TypeMismatchError{Column: col.Name, Value: raw, Want: "timestamp"}
	default:
		return raw, nil
	}
}
