package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/capstack/goregistrar/env"
	"github.com/capstack/goregistrar/grerrors"
	"github.com/capstack/goregistrar/models/enum"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
)

type Authenticator interface {
	Authenticate(Context) error
}

type authenticator struct {
	Authenticator
}

func NewAuthenticator() Authenticator {
	return &authenticator{}
}

var matcher = regexp.MustCompile("Bearer (.*)")

// Authenticate verifies the bearer token minted by the external
// identity provider and attaches the principal + role to the session.
// The registrar trusts the provider's role claim; per-operation
// enforcement happens in the api wrappers.
func (a *authenticator) Authenticate(ctx Context) error {
	header := ctx.Request().Header.Get("Authorization")
	if header == "" {
		return grerrors.Unauthorized.WithMsg("missing authorization header")
	}

	match := matcher.FindStringSubmatch(header)
	if len(match) < 2 {
		return grerrors.InvalidRequestParam.WithMsg("invalid authorization header value format")
	}

	tokenString := match[1]

	secret := env.GetVar("REGISTRAR_SECRET")

	// in testing mode, token is "<principal_id>:<role>", so we can
	// avoid the identity provider during development & testing
	if secret == "" {
		return a.authorizePlain(ctx, tokenString)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}

	principalID, role, err := handleClaims(token)
	if err != nil {
		return err
	}

	ctx.Authorize(principalID, role)

	// assign principal_id for tracking purpose
	ctx.Values().Set("principal_id", principalID.String())

	return nil
}

func (a *authenticator) authorizePlain(ctx Context, token string) error {
	parts := strings.SplitN(token, ":", 2)

	principalID := uuid.FromStringOrNil(parts[0])
	if principalID == uuid.Nil {
		return grerrors.Unauthorized
	}

	role := enum.RoleReadOnly
	if len(parts) == 2 {
		role = enum.ParseRole(parts[1])
	}

	ctx.Authorize(principalID, role)
	ctx.Values().Set("principal_id", principalID.String())

	return nil
}

func handleClaims(token *jwt.Token) (uuid.UUID, enum.Role, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", errors.New("token invalid")
	}

	sub, _ := claims["sub"].(string)

	principalID := uuid.FromStringOrNil(sub)
	if principalID == uuid.Nil {
		return uuid.Nil, "", grerrors.Unauthorized
	}

	roleClaim, _ := claims["role"].(string)

	return principalID, enum.ParseRole(roleClaim), nil
}
