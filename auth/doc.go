// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key generation and validation.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(sessionID, salt)
	err := auth.ValidateAdminKey(sessionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same session ID and salt always produce the same key. This allows
validation without storing the key anywhere.

Privileged requests carry the key in the X-Admin-Key header. Only admin
commands (start, restart, end, destroy, reset, delete) need it; participants
vote without credentials.
*/
package auth
