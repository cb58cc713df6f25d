package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	userLocal  = "user"
	actorLocal = "actor_id"
)

var ErrNoActor = errors.New("no authenticated actor")

// GetUserID extracts the user UUID from the JWT subject claim.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := getClaims(c)
	if err != nil {
		return uuid.Nil, err
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// GetActorID returns the moderator acting on this request, as resolved by
// ModeratorRequired.
func GetActorID(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(actorLocal).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, ErrNoActor
}

func getClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(userLocal).(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
