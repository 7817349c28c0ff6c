// Package tasks implements the authentication and authorization core of a
// multi-tenant task management backend: signed session credentials, the
// two-cookie session transport, role and ownership based access gating, and
// the repositories the HTTP layer depends on.
package tasks
