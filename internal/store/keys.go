package store

// Persistent key names. These are stable identifiers; renaming one orphans
// previously written data.
const (
	keySessionAccessToken  = "session.accessToken"
	keySessionRefreshToken = "session.refreshToken"
	keySessionExpiresAt    = "session.expiresAt"
	keySessionUser         = "session.user"
	keySessionCSRFToken    = "session.csrfToken"

	keyTheme = "ui.theme"

	keyFavorites = "favorites.v1"

	keyCurrencyCache    = "currency.cache"
	keyCurrencySelected = "currency.selected"

	// Comments are stored per book under this prefix.
	keyCommentsPrefix = "comments."
)
