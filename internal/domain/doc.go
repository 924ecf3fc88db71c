// Package domain provides the canonical entity types for the order back office.
//
// This package contains type definitions only. Every other internal package
// imports domain; domain imports nothing internal. This keeps the entity
// vocabulary the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Money is decimal.Decimal at 2-place scale, never float64
//   - Closed vocabularies (size, color, status, ...) are string enums whose
//     values are the labels persisted by the store
//   - Natural keys (phone, titles, size/color names) deduplicate shared
//     entities; surrogate int64 ids are assigned by the store
//   - All JSON tags use snake_case
package domain
