// Package server provides HTTP routing, middleware, and the local OAuth
// callback endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] is where backend consent flows land. The backend finishes
// the OAuth dance with a provider and redirects the browser to this local
// server with the result encoded in query parameters; the handler commits the
// delivered credential, publishes the outcome, and answers with a redirect to
// the bare path so refreshing the page cannot replay the parameters.
//
// # Current Usage
//
// When the user runs `auth login`, a temporary HTTP server starts on
// localhost:3000 with a CallbackHandler mounted at the root, the browser is
// opened to the backend's authorize endpoint, and the server shuts down once
// the callback delivers a result (or the flow times out).
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
