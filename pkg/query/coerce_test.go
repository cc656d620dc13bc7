package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabrest/tabrest/pkg/catalog"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		kind catalog.Kind
		raw  string
		want any
	}{
		{"integer", catalog.KindInteger, "42", int64(42)},
		{"negative integer", catalog.KindInteger, "-7", int64(-7)},
		{"float", catalog.KindFloat, "3.14", 3.14},
		{"boolean true", catalog.KindBoolean, "true", true},
		{"boolean numeric", catalog.KindBoolean, "1", true},
		{"text passes through", catalog.KindText, "John", "John"},
		{"other passes through", catalog.KindOther, "{1,2}", "{1,2}"},
		{"date", catalog.KindDate, "2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"timestamp rfc3339", catalog.KindTimestamp, "2024-06-01T12:30:00Z",
			time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"timestamp space-separated", catalog.KindTimestamp, "2024-06-01 12:30:00",
			time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"timestamp date-only", catalog.KindTimestamp, "2024-06-01",
			time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(catalog.Column{Name: "c", Kind: tt.kind}, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceMismatch(t *testing.T) {
	tests := []struct {
		kind catalog.Kind
		raw  string
		want string
	}{
		{catalog.KindInteger, "abc", "integer"},
		{catalog.KindInteger, "1.5", "integer"},
		{catalog.KindFloat, "abc", "float"},
		{catalog.KindBoolean, "yes", "boolean"},
		{catalog.KindDate, "01/06/2024", "date"},
		{catalog.KindTimestamp, "noonish", "timestamp"},
	}

	for _, tt := range tests {
		_, err := Coerce(catalog.Column{Name: "c", Kind: tt.kind}, tt.raw)
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch, tt.raw)
		assert.Equal(t, tt.want, mismatch.Want)
		assert.Equal(t, tt.raw, mismatch.Value)
	}
}
