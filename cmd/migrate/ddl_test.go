package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const schema = `
-- price tables
CREATE TABLE price_scopes (
  product_id STRING(64) NOT NULL,
) PRIMARY KEY (product_id);

CREATE INDEX idx_price_change_logs_product ON price_change_logs(product_id, changed_at DESC);
CREATE UNIQUE NULL_FILTERED INDEX idx_x ON t(a);
ALTER TABLE price_scopes ADD COLUMN note STRING(MAX);
`

func TestSplitDDLStatements(t *testing.T) {
	stmts := splitDDLStatements(schema)
	assert.Len(t, stmts, 4)
	assert.Contains(t, stmts[0], "CREATE TABLE price_scopes")
	assert.NotContains(t, stmts[0], "--")
}

func TestCreatedObject(t *testing.T) {
	assert.Equal(t, "table:price_scopes", createdObject("CREATE TABLE price_scopes (a INT64) PRIMARY KEY (a)"))
	assert.Equal(t, "index:idx_x", createdObject("CREATE UNIQUE NULL_FILTERED INDEX idx_x ON t(a)"))
	assert.Equal(t, "table:outbox_events", createdObject("create table `outbox_events` (a INT64) PRIMARY KEY (a)"))
	assert.Equal(t, "", createdObject("ALTER TABLE price_scopes ADD COLUMN note STRING(MAX)"))
}

func TestPendingStatements(t *testing.T) {
	stmts := splitDDLStatements(schema)
	existing := existingObjects([]string{"CREATE TABLE price_scopes (\n  product_id STRING(64) NOT NULL,\n) PRIMARY KEY (product_id)"})

	pending := pendingStatements(stmts, existing)
	assert.Len(t, pending, 3)
	for _, stmt := range pending {
		assert.NotContains(t, stmt, "CREATE TABLE price_scopes")
	}
}
