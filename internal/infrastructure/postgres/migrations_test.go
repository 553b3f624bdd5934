package postgres

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Los asientos son inmutables: ninguna FK de stock_logs puede reescribirlos al borrar el padre.
func TestMigracion_StockLogsSinBorradoEnCascada(t *testing.T) {
	raw, err := os.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)

	start := strings.Index(string(raw), "CREATE TABLE IF NOT EXISTS stock_logs")
	require.GreaterOrEqual(t, start, 0)
	table := string(raw)[start:]
	table = table[:strings.Index(table, ");")]

	refs := regexp.MustCompile(`REFERENCES \w+ \(id\) ON DELETE (\w+(?: \w+)?)`).FindAllStringSubmatch(table, -1)
	require.Len(t, refs, 3, "product_id, warehouse_id y user_id")
	for _, ref := range refs {
		assert.Equal(t, "RESTRICT", ref[1], ref[0])
	}
}
