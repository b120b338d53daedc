// ABOUTME: Token response normalization and JWT expiry inspection
// ABOUTME: Converts backend token payloads into the canonical *oauth2.Token

package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// tokenResponse accepts both snake_case (backend) and camelCase token fields.
type tokenResponse struct {
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	TokenType         string `json:"token_type"`
	ExpiresIn         int64  `json:"expires_in"`
	AccessTokenCamel  string `json:"accessToken"`
	RefreshTokenCamel string `json:"refreshToken"`
	TokenTypeCamel    string `json:"tokenType"`
}

var errNoAccessToken = errors.New("token response did not include an access token")

// token returns the normalized token. now is used to resolve expires_in.
func (r tokenResponse) token(now time.Time) (*oauth2.Token, error) {
	tok := &oauth2.Token{
		AccessToken:  firstNonEmpty(r.AccessToken, r.AccessTokenCamel),
		RefreshToken: firstNonEmpty(r.RefreshToken, r.RefreshTokenCamel),
		TokenType:    "Bearer",
	}
	if tok.AccessToken == "" {
		return nil, errNoAccessToken
	}
	if r.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	} else {
		tok.Expiry = jwtExpiry(tok.AccessToken)
	}
	return tok, nil
}

// jwtExpiry reads the exp claim without verifying the signature.
// Opaque or malformed tokens return the zero time (unknown expiry).
func jwtExpiry(raw string) time.Time {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// expired reports whether a known expiry has passed. Unknown expiry is never expired.
func expired(expiry, now time.Time) bool {
	return !expiry.IsZero() && !now.Before(expiry)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
