package credstore

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"golang.org/x/oauth2"
)

// Grant is the token material issued for one user.
type Grant struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// GrantFromToken builds a Grant from an exchanged OAuth token.
func GrantFromToken(tok *oauth2.Token, scopes []string) *Grant {
	if tok == nil {
		return nil
	}
	return &Grant{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       slices.Clone(scopes),
	}
}

// Token returns the grant as an oauth2.Token suitable for a TokenSource.
func (g *Grant) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  g.AccessToken,
		TokenType:    g.TokenType,
		RefreshToken: g.RefreshToken,
		Expiry:       g.Expiry,
	}
}

// Usable reports whether calls can be authenticated with this grant at now.
// An expired access token is still usable when a refresh token is present,
// since the token source refreshes it transparently.
func (g *Grant) Usable(now time.Time) bool {
	if g == nil || g.AccessToken == "" {
		return false
	}
	if g.RefreshToken != "" || g.Expiry.IsZero() {
		return true
	}
	return now.Before(g.Expiry)
}

func marshalGrant(g *Grant) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grant: %w", err)
	}
	return data, nil
}

func unmarshalGrant(data []byte) (*Grant, error) {
	var g Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode grant: %w", err)
	}
	return &g, nil
}
