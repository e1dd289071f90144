// Package auth resolves bearer tokens to identities by asking the identity
// provider's userinfo endpoint. No tokens are issued or verified locally.
package auth

import (
	"context"
	"errors"
	"excaliapp/core"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrNoEmail is returned when the userinfo response carries no email claim.
var ErrNoEmail = errors.New("userinfo has no email")

type Introspector interface {
	Identify(ctx context.Context, token string) (*core.Identity, error)
}

type userInfoIntrospector struct {
	provider *oidc.Provider
	client   *http.Client
}

// NewIntrospector targets a userinfo endpoint directly, without discovery.
// client may be nil.
func NewIntrospector(ctx context.Context, userInfoURL string, client *http.Client) (*userInfoIntrospector, error) {
	if userInfoURL == "" {
		return nil, errors.New("userinfo url is required")
	}
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider := (&oidc.ProviderConfig{UserInfoURL: userInfoURL}).NewProvider(ctx)
	logrus.WithField("userinfo_url", userInfoURL).Info("Using userinfo introspection")
	return &userInfoIntrospector{provider: provider, client: client}, nil
}

func (i *userInfoIntrospector) Identify(ctx context.Context, token string) (*core.Identity, error) {
	if i.client != nil {
		ctx = oidc.ClientContext(ctx, i.client)
	}
	info, err := i.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}

	var identity core.Identity
	if err := info.Claims(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo claims: %w", err)
	}
	if identity.Subject == "" {
		identity.Subject = info.Subject
	}
	if identity.Email == "" {
		identity.Email = info.Email
	}
	if identity.Email == "" {
		return nil, ErrNoEmail
	}
	return &identity, nil
}
