package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

func (s *SupabaseClient) GetProfile(ctx context.Context, token, userId string) (*models.Profile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", eq(userId))
	query.Set("limit", "1")

	var profiles []models.Profile
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(profilesTableName), query: query, token: token}, &profiles); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

// UpsertProfile creates or merges the profile row of user.
func (s *SupabaseClient) UpsertProfile(ctx context.Context, token string, user models.User, input models.ProfileInput) (*models.Profile, error) {
	now := time.Now().UTC()
	profile := models.Profile{
		Id:        user.Id,
		Email:     user.Email,
		Username:  input.Username,
		FullName:  input.FullName,
		AvatarUrl: input.AvatarUrl,
		Bio:       input.Bio,
		UpdatedAt: &now,
	}

	var upserted []models.Profile
	err := s.do(ctx, request{
		method: http.MethodPost,
		path:   tablePath(profilesTableName),
		token:  token,
		prefer: preferUpsert,
		body:   profile,
	}, &upserted)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	if len(upserted) == 0 {
		return nil, fmt.Errorf("failed to upsert profile: empty response")
	}
	return &upserted[0], nil
}
