package database

import (
	"strings"
	"testing"
)

// The inventory ledger is append-only: deleting an ingredient must not
// delete or rewrite its transaction history. That only holds if the schema
// never ties ledger rows to the ingredients table with a foreign key.
func TestLedgerRowsOutliveIngredientDelete(t *testing.T) {
	ddl := createTableBlock(t, "inventory_transactions")

	for _, line := range strings.Split(ddl, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "ingredient_id") {
			continue
		}
		if strings.Contains(trimmed, "REFERENCES") {
			t.Fatalf("inventory_transactions.ingredient_id must be a snapshot column, found FK: %s", trimmed)
		}
		if strings.Contains(trimmed, "CASCADE") {
			t.Fatalf("inventory_transactions.ingredient_id must not cascade: %s", trimmed)
		}
		return
	}
	t.Fatal("inventory_transactions has no ingredient_id column")
}

// Order line items snapshot their menu item the same way.
func TestOrderItemsSnapshotMenuItem(t *testing.T) {
	ddl := createTableBlock(t, "order_items")

	for _, line := range strings.Split(ddl, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "menu_item_id") {
			continue
		}
		if strings.Contains(trimmed, "REFERENCES") {
			t.Fatalf("order_items.menu_item_id must be a snapshot column, found FK: %s", trimmed)
		}
		return
	}
	t.Fatal("order_items has no menu_item_id column")
}

// createTableBlock extracts a single CREATE TABLE statement from the
// embedded migrations.
func createTableBlock(t *testing.T, table string) string {
	t.Helper()

	raw, err := migrationsFS.ReadFile("migrations/00001_init.sql")
	if err != nil {
		t.Fatalf("reading embedded migration: %v", err)
	}

	marker := "CREATE TABLE " + table + " ("
	start := strings.Index(string(raw), marker)
	if start < 0 {
		t.Fatalf("migration does not create table %s", table)
	}
	rest := string(raw)[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated CREATE TABLE %s", table)
	}
	return rest[:end]
}
