// Package api assembles the HTTP surface: the router, the middleware
// pipeline, and the route handlers. Handlers stay thin; they parse the
// request, call a collaborator, and hand any failure to the shared error
// translator so every error leaves as the uniform envelope.
package api
