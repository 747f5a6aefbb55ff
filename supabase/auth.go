package supabase

import (
	"context"
	"net/http"
	"time"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
	"github.com/MamunCrafts/ai-simplified-by-mamun/utils"
)

const userCacheTTL = 2 * time.Minute

// GetUser resolves an access token to the user it belongs to.
func (s *SupabaseClient) GetUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	cacheKey := "user:" + utils.Hash(token)
	if cachedUser, found := s.cache.Get(cacheKey); found {
		return cachedUser.(*models.User), nil
	}

	var user models.User
	if err := s.do(ctx, request{method: http.MethodGet, path: authPath, token: token}, &user); err != nil {
		return nil, err
	}
	if user.Id == "" {
		return nil, ErrUnauthorized
	}

	s.cache.Set(cacheKey, &user, userCacheTTL)
	return &user, nil
}
