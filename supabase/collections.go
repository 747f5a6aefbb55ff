package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

const collectionPromptsSelect = "*,prompts(*,profiles:user_id(full_name,username,avatar_url))"

func (s *SupabaseClient) ListCollections(ctx context.Context, token, userId string) ([]models.Collection, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", eq(userId))
	query.Set("order", "name.asc")

	collections := []models.Collection{}
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(collectionsTableName), query: query, token: token}, &collections); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

func (s *SupabaseClient) CreateCollection(ctx context.Context, token, userId string, input models.CollectionInput) (*models.Collection, error) {
	collection := models.Collection{
		Name:        input.Name,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		UserId:      userId,
	}

	var created []models.Collection
	err := s.do(ctx, request{
		method: http.MethodPost,
		path:   tablePath(collectionsTableName),
		token:  token,
		prefer: preferRepresentation,
		body:   collection,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to create collection: empty response")
	}
	return &created[0], nil
}

// GetCollection returns the collection id owned by userId.
func (s *SupabaseClient) GetCollection(ctx context.Context, token, userId, id string) (*models.Collection, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", eq(id))
	query.Set("user_id", eq(userId))
	query.Set("limit", "1")

	var collections []models.Collection
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(collectionsTableName), query: query, token: token}, &collections); err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	if len(collections) == 0 {
		return nil, ErrNotFound
	}
	return &collections[0], nil
}

func (s *SupabaseClient) DeleteCollection(ctx context.Context, token, userId, id string) error {
	query := url.Values{}
	query.Set("id", eq(id))
	query.Set("user_id", eq(userId))

	var deleted []models.Collection
	err := s.do(ctx, request{
		method: http.MethodDelete,
		path:   tablePath(collectionsTableName),
		query:  query,
		token:  token,
		prefer: preferRepresentation,
	}, &deleted)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCollectionPrompts returns the entries of a collection, most recently added first.
func (s *SupabaseClient) ListCollectionPrompts(ctx context.Context, token, collectionId string) ([]models.CollectionPrompt, error) {
	query := url.Values{}
	query.Set("select", collectionPromptsSelect)
	query.Set("collection_id", eq(collectionId))
	query.Set("order", "added_at.desc")

	entries := []models.CollectionPrompt{}
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(collectionPromptsTableName), query: query, token: token}, &entries); err != nil {
		return nil, fmt.Errorf("failed to list collection prompts: %w", err)
	}
	return entries, nil
}

func (s *SupabaseClient) AddPromptToCollection(ctx context.Context, token, collectionId, promptId string) (*models.CollectionPrompt, error) {
	var created []models.CollectionPrompt
	err := s.do(ctx, request{
		method: http.MethodPost,
		path:   tablePath(collectionPromptsTableName),
		token:  token,
		prefer: preferRepresentation,
		body:   models.CollectionPrompt{CollectionId: collectionId, PromptId: promptId},
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to add prompt to collection: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to add prompt to collection: empty response")
	}
	return &created[0], nil
}

func (s *SupabaseClient) RemovePromptFromCollection(ctx context.Context, token, collectionId, promptId string) error {
	query := url.Values{}
	query.Set("collection_id", eq(collectionId))
	query.Set("prompt_id", eq(promptId))

	var deleted []models.CollectionPrompt
	err := s.do(ctx, request{
		method: http.MethodDelete,
		path:   tablePath(collectionPromptsTableName),
		query:  query,
		token:  token,
		prefer: preferRepresentation,
	}, &deleted)
	if err != nil {
		return fmt.Errorf("failed to remove prompt from collection: %w", err)
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	return nil
}
