// Package hosted implements an IdentityProvider backed by a hosted auth
// service exposing a password-grant token endpoint and a JWKS endpoint,
// e.g. Supabase Auth / GoTrue deployments. Credential verification is
// delegated wholesale to the service; the returned access token is still
// validated locally against the service's published keys so protected
// routes never trust an unverified assertion.
package hosted
