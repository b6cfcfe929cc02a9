package dbutil

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRewritesPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM products WHERE category_id=? AND is_featured=?", []interface{}{int64(2), true})
	require.Equal(t, "SELECT id FROM products WHERE category_id=$1 AND is_featured=$2", query)
	require.Equal(t, []interface{}{int64(2), true}, args)
}

func TestFinalizeSwapsLimitClause(t *testing.T) {
	query, args := Finalize("SELECT id FROM products WHERE stock>? LIMIT ?,?", []interface{}{0, 10, 5})
	require.Equal(t, "SELECT id FROM products WHERE stock>$1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{0, 5, 10}, args)
}

func TestFinalizeLeavesPlainLimitAlone(t *testing.T) {
	query, args := Finalize("SELECT id FROM products LIMIT ?", []interface{}{3})
	require.Equal(t, "SELECT id FROM products LIMIT $1", query)
	require.Equal(t, []interface{}{3}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(nil))
}
