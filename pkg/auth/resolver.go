package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/supabase-community/supabase-go"
)

// Sentinel errors surfaced by session resolvers.
var (
	ErrMissingToken = errors.New("missing authentication token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionCookieName is the auth provider's access-token cookie. The resolver
// is its sole reader.
const SessionCookieName = "sb-access-token"

// SessionResolver turns an opaque access token into a user identity.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*UserContext, error)
}

// SupabaseResolver validates tokens against the Supabase auth API.
type SupabaseResolver struct {
	client *supabase.Client
}

// NewSupabaseResolver builds a resolver backed by the given project URL and
// service-role key.
func NewSupabaseResolver(projectURL, serviceKey string) (*SupabaseResolver, error) {
	client, err := supabase.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, err
	}
	return &SupabaseResolver{client: client}, nil
}

// Resolve fetches the user owning the token. The provider call carries its
// own HTTP timeout; ctx is accepted for interface symmetry with the dev
// resolver.
func (r *SupabaseResolver) Resolve(_ context.Context, token string) (*UserContext, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	user, err := r.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, ErrInvalidToken
	}
	name := ""
	if raw, ok := user.UserMetadata["name"].(string); ok {
		name = raw
	}
	return &UserContext{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   name,
	}, nil
}

// ExtractToken pulls the access token from the Authorization header or the
// provider cookie. Empty string when neither is present.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
