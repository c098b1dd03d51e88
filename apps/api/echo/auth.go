package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

const (
	contextTokenKey = "userToken"
	audience        = "Masomo"
)

var nowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	IsStudent bool     `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher bool     `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin   bool     `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
	Roles     []string `json:"roles,omitempty"`
}

// TokenRequest holds what is needed to issue an API token.
type TokenRequest struct {
	Subject string `json:"subject" validate:"required,alphanum_"`
	Role    string `json:"role" validate:"required,oneof=admin teacher student"`
}

func (tr *TokenRequest) Validate(validate *validator.Validate) error {
	tr.Subject = core.CleanString(tr.Subject)
	tr.Role = core.CleanString(tr.Role, true /* lower */)
	return validate.Struct(tr)
}

// TokenResponse is the body of a successful POST /api/auth/token.
type TokenResponse struct {
	Token string `json:"token"`
}

// NewClaims returns the claims of a token for subject, valid for conf.Server.JWTExpirationDelta.
func NewClaims(conf *core.Config, subject string, roles ...string) *Claims {
	now := nowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  audience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsStudent: school.RoleStartsWith(roles, school.RoleStudent),
		IsTeacher: school.IsTeacher(roles),
		IsAdmin:   school.IsAdmin(roles),
		Roles:     roles,
	}
}

// IssueToken validates tr and returns a signed token.
func IssueToken(conf *core.Config, validate *validator.Validate, tr TokenRequest) (string, error) {
	if err := tr.Validate(validate); err != nil {
		return "", err
	}
	role, _ := school.ParseRole(tr.Role)
	return GenerateToken(conf, NewClaims(conf, tr.Subject, role))
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

type authMiddlewares struct {
	jwt   echo.MiddlewareFunc
	write echo.MiddlewareFunc
	admin echo.MiddlewareFunc
}

// newAuthMiddlewares returns pass-through middlewares when auth is disabled.
func newAuthMiddlewares(conf *core.Config) authMiddlewares {
	if !conf.Auth.Enabled {
		noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		return authMiddlewares{jwt: noop, write: noop, admin: noop}
	}
	return authMiddlewares{
		jwt:   middleware.JWTWithConfig(jwtConfig(conf)),
		write: roleMiddleware(school.CanWrite),
		admin: roleMiddleware(school.IsAdmin),
	}
}

func roleMiddleware(allowed func(roles []string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(claims.Roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// issueToken lets an admin mint a token for someone else.
func (s *Server) issueToken(ctx echo.Context) error {
	var tr TokenRequest
	if err := ctx.Bind(&tr); err != nil {
		return err
	}
	token, err := IssueToken(s.deps.Conf, s.deps.Validate, tr)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}
