// Package models defines domain entities and persistence interfaces for the media pack campaign service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external provider data
//   - [Track] : Song metadata from the music provider, with ISRC
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Content] : Catalog entries (movies, dramas, shows, k-pop tracks, documentaries)
//   - [Pack] : Shareable bundles with a serial number and public share slug
//
// All persistent entities implement the Model interface providing ID access, timestamps, and validation.
// Data access lives in the repositories package; each repository exposes the
// query surface its entity needs rather than a generic CRUD contract.
//
// Contents are soft-deleted by flipping is_active; ids are immutable once created.
package models
