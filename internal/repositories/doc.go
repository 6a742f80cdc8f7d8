// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [ContentRepository] : Catalog content persistence with filter/sort/paginate queries and idempotent upserts
//   - [PackRepository] : Pack rows, membership writes, and slug-based reads with resolved members
//   - [NextSequence] : Keyed atomic counters backing pack serial numbers
//
// Contents use soft deletes (is_active flag) and are excluded from every
// query once inactive. Packs use hard deletes so compensation after a
// failed creation leaves nothing observable; membership rows cascade with
// their pack. Counter increments run in a transaction and are linearizable
// per key.
package repositories
