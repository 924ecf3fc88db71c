// Package reconcile turns a batch of canonical order-item records into a
// referentially consistent set of persisted entities.
//
// A batch is projected into customers, catalog rows, orders, payment items
// and order items, checked for shape, then written in one gateway
// transaction. Shared entities are deduplicated by natural key and inserted
// conflict-tolerantly; their ids are always read back by key afterwards.
// Payment items and order items reach their order through the order's Ref,
// never through slice position.
package reconcile
