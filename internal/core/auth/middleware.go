package auth

import (
	"errors"
	"strings"

	"lepatage-store/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// ClaimsLocalKey is the fiber.Ctx locals key holding *AdminClaims after a successful check.
const ClaimsLocalKey = "admin_claims"

var (
	// ErrMissingToken is returned when the Authorization header carries no bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrNotAdmin is returned when a valid token belongs to a non-admin user.
	ErrNotAdmin = errors.New("auth: admin privileges required")
)

// AdminClaims mirrors the storefront token payload.
type AdminClaims struct {
	UserID  int64  `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 storefront tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier for the shared signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify parses the token and requires the admin flag.
func (v *Verifier) Verify(token string) (*AdminClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &AdminClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return nil, err
	}

	if !claims.IsAdmin {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

// RequireAdmin returns a fiber middleware that rejects requests without a valid admin token.
func (v *Verifier) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rayID, _ := c.Locals("requestid").(string)

		claims, err := v.Verify(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			status := fiber.StatusUnauthorized
			msg := "Unauthorized"
			if errors.Is(err, ErrNotAdmin) {
				status = fiber.StatusForbidden
				msg = "Admin privileges required"
			}

			logger.Get().Warn("Admin authentication failed",
				zap.String("ray_id", rayID),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(status).JSON(fiber.Map{
				"message": msg,
				"ray_id":  rayID,
			})
		}

		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
