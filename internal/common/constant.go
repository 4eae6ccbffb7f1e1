package common

// AccessTokenCookieName is the HTTP-only cookie carrying the access JWT.
const AccessTokenCookieName = "jwt"

// RefreshTokenCookieName is the HTTP-only cookie carrying the opaque refresh token.
const RefreshTokenCookieName = "refresh_token"
