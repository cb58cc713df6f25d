package middleware

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleLookup resolves the stored role of a user.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (string, error)
}

type dbRoles struct {
	db *gorm.DB
}

// DBRoles looks roles up in the users table.
func DBRoles(db *gorm.DB) RoleLookup {
	return dbRoles{db: db}
}

func (r dbRoles) RoleOf(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("role").First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.Role, nil
}

// ModeratorRequired admits staff allowed to moderate reviews and records
// who they are under Locals("actor_id"). It checks, in order:
// 1. Admin token header, with the acting user in X-Actor-ID
// 2. Config-based admin emails/IDs
// 3. The JWT role claim
// 4. DB-based user Role field
func ModeratorRequired(roles RoleLookup, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)
	allowed := cfg.ModeratorRoleSet()

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			actorID, err := uuid.Parse(strings.TrimSpace(c.Get("X-Actor-ID")))
			if err != nil || actorID == uuid.Nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error: true, Message: "X-Actor-ID header must carry the moderator's user ID",
				})
			}
			c.Locals(actorLocal, actorID)
			return c.Next()
		}

		token, ok := c.Locals(userLocal).(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		email, _ := claims["email"].(string)
		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)

		userID, err := uuid.Parse(sub)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid subject claim",
			})
		}

		admit := contains(adminEmails, email) || contains(adminUserIDs, sub) || allowed[role]
		if !admit && roles != nil {
			if stored, err := roles.RoleOf(c.UserContext(), userID); err == nil {
				admit = allowed[stored]
			}
		}
		if !admit {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Moderator access required",
			})
		}

		c.Locals(actorLocal, userID)
		return c.Next()
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
