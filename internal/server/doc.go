// Package server implements the thin HTTP surface over the catalog engine
// and the pack creation workflow.
//
// Handlers only parse parameters and shape JSON; all query, caching, and
// transaction semantics live in the catalog and tasks packages. Routing
// uses [http.ServeMux] method-qualified patterns behind the [Router]
// abstraction, with logging and panic-recovery middleware.
package server
