package grant

import (
	"strconv"
	"strings"

	"github.com/stillwater-io/grantd/internal/oauth/domain"
	"github.com/stillwater-io/grantd/pkg/cryptox"
)

// accessTokenLifetime is the lifetime, in seconds, stamped on every token
// this core issues. Access it through TokenLifetime so per-client or
// per-scope policy can be introduced later without touching the grant state
// machines.
const accessTokenLifetime = 3600

// TokenLifetime returns the expires_in value for issued tokens, in seconds.
func TokenLifetime() int {
	return accessTokenLifetime
}

// mintToken fabricates a fresh token for the given scopes. Token material
// comes from a CSPRNG; that is a correctness requirement, not a tunable.
func mintToken(scopes []string, withRefresh bool) (domain.Token, error) {
	access, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Token{}, err
	}

	token := domain.Token{
		AccessToken: access,
		ExpiresIn:   TokenLifetime(),
		Scope:       strings.Join(scopes, " "),
	}

	if withRefresh {
		refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return domain.Token{}, err
		}
		token.RefreshToken = refresh
	}

	return token, nil
}

// tokenParams returns the ordered redirect serialization of a token, used
// by the implicit grant's fragment encoding.
func tokenParams(t domain.Token) []Param {
	params := []Param{{Key: "access_token", Value: t.AccessToken}}
	if t.RefreshToken != "" {
		params = append(params, Param{Key: "refresh_token", Value: t.RefreshToken})
	}
	params = append(params,
		Param{Key: "expires_in", Value: strconv.Itoa(t.ExpiresIn)},
		Param{Key: "scope", Value: t.Scope},
	)
	if t.State != "" {
		params = append(params, Param{Key: "state", Value: t.State})
	}
	return params
}
