// Package store provides SQL-backed persistence for order batches.
//
// Store implements reconcile.Gateway: a batch is written inside one
// transaction through the reconcile.Tx operations.
//
// # Write Patterns
//
// Shared entities (customers, categories, products, sizes, colors) are
// written with multi-row INSERT ... ON CONFLICT DO NOTHING against their
// natural-key UNIQUE constraint. Ids are never taken from the insert; they
// are read back by natural key with FindIDs, so rows that already existed
// resolve the same way as new ones.
//
// Orders are inserted with RETURNING batch_ref, id. Payment items and order
// items are attached through that ref map, never by position.
//
// # Dialects
//
//   - sqlite3 (default): WAL mode, synchronous=NORMAL, busy_timeout=5000,
//     foreign_keys=ON, PRAGMA user_version migrations. Money is TEXT.
//   - postgres: NUMERIC(10,2) money, TIMESTAMPTZ times. Queries are written
//     with ? placeholders and rebound to $n.
package store
