// Package recipes implements the account and session-token core for the
// recipe search service: credential verification against a user store,
// signed session token issuance and validation, the registration command,
// and the HTTP controllers that render the login and recipe pages. The
// upstream recipe API client lives in mealdb, route protection in
// middleware/tokenware.
package recipes
