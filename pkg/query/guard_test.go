package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultBlacklist = []string{"DROP", "DELETE", "TRUNCATE", "ALTER"}

func TestCheckBlacklistRejects(t *testing.T) {
	tests := []string{
		"DROP TABLE users",
		"drop table users",
		"SELECT 1; ALTER TABLE users ADD COLUMN x int",
		"  TRUNCATE users  ",
		"DELETE FROM users WHERE id = 1",
	}
	for _, sqlText := range tests {
		err := CheckBlacklist(sqlText, defaultBlacklist)
		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected, sqlText)
	}
}

func TestCheckBlacklistAccepts(t *testing.T) {
	tests := []string{
		"SELECT 1",
		"SELECT * FROM users WHERE name = 'x'",
		// Substrings of banned words are not banned words.
		"SELECT dropped_at FROM users",
		"SELECT * FROM alterations",
	}
	for _, sqlText := range tests {
		assert.NoError(t, CheckBlacklist(sqlText, defaultBlacklist), sqlText)
	}
}

func TestCheckBlacklistEmptyAcceptsEverything(t *testing.T) {
	assert.NoError(t, CheckBlacklist("DROP TABLE users", nil))
	assert.NoError(t, CheckBlacklist("DROP TABLE users", []string{}))
	assert.NoError(t, CheckBlacklist("DROP TABLE users", []string{"", "  "}))
}

func TestCheckBlacklistReportsKeywordAsConfigured(t *testing.T) {
	err := CheckBlacklist("drop table users", []string{"DROP"})
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "DROP", rejected.Keyword)
}

// The scan is lexical: keywords inside string literals or below paren depth
// zero pass. Locked down so a future stricter parser shows up as a diff.
func TestCheckBlacklistScopeIsTopLevel(t *testing.T) {
	assert.NoError(t, CheckBlacklist("SELECT 'DROP TABLE users'", defaultBlacklist))
	assert.NoError(t, CheckBlacklist(`SELECT "drop" FROM t`, defaultBlacklist))
	assert.NoError(t, CheckBlacklist("SELECT lower(drop) FROM t", defaultBlacklist))
}
