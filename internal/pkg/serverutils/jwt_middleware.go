package serverutils

import (
	"fmt"
	"os"
	"strconv"

	"author-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserID       = "user_id"
	LocalRepositoryID = "repository_id"
)

// ParseToken verifies an HMAC signed token and returns its claims.
func ParseToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// ClaimInt64 reads a numeric claim. JSON numbers decode as float64, some
// issuers send ids as strings.
func ClaimInt64(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Missing token", "UNAUTHORIZED", nil))
	}

	claims, err := ParseToken(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid token", "UNAUTHORIZED", nil))
	}

	userID, ok := ClaimInt64(claims, "user_id")
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Token missing user_id", "UNAUTHORIZED", nil))
	}
	ctx.Locals(LocalUserID, userID)

	// Tokens may be restricted to a single repository.
	if repositoryID, ok := ClaimInt64(claims, "repository_id"); ok {
		ctx.Locals(LocalRepositoryID, repositoryID)
	}
	return ctx.Next()
}

// MutationContextFrom builds the caller context set up by JwtMiddleware.
func MutationContextFrom(ctx *fiber.Ctx) (entity.MutationContext, error) {
	userID, ok := ctx.Locals(LocalUserID).(int64)
	if !ok {
		return entity.MutationContext{}, fiber.ErrUnauthorized
	}
	mctx := entity.MutationContext{UserId: userID}
	if repositoryID, ok := ctx.Locals(LocalRepositoryID).(int64); ok {
		mctx.RepositoryId = &repositoryID
	}
	return mctx, nil
}
