// Package auth provides authentication and authorization for the API.
//
// Clients obtain a bearer token from POST /api/auth/login and send it as
//
//	Authorization: Bearer <token>
//
// Tokens are HS256 JWTs whose subject is the username. A token is only
// accepted while its subject still resolves to a stored user.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<hex>          # Auto-generated (with a warning) if empty
//	AUTH_JWT_EXPIRY=168h           # Token lifetime
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # Failed logins before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	service := auth.NewService(userRepo, auth.NewTokenIssuer(secret, cfg.JWTExpiry), cfg, auditService, log)
//	mw := auth.NewMiddleware(service)
//	api.POST("/users/:user_id", mw.RequireBearer(), auth.RequireSelf("user_id"), handler)
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
package auth
