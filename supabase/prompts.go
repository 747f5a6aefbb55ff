package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

const (
	promptWithAuthorSelect = "*,profiles:user_id(full_name,username,avatar_url)"
	facetsCacheKey         = "library:facets"
	facetsCacheTTL         = time.Minute
	popularTagsLimit       = 20
)

// ListPublicPrompts returns the public library, newest first.
func (s *SupabaseClient) ListPublicPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error) {
	query := url.Values{}
	query.Set("select", promptWithAuthorSelect)
	query.Set("is_public", "eq.true")
	query.Set("order", "created_at.desc")
	if filter.Search != "" {
		query.Set("or", searchFilter(filter.Search, "title", "description", "content"))
	}
	if filter.Category != "" {
		query.Set("category", eq(quote(filter.Category)))
	}
	if len(filter.Tags) > 0 {
		query.Set("tags", "ov."+arrayLiteral(filter.Tags))
	}

	prompts := []models.Prompt{}
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(promptsTableName), query: query}, &prompts); err != nil {
		return nil, fmt.Errorf("failed to list public prompts: %w", err)
	}
	return prompts, nil
}

// LibraryFacets returns the distinct public categories and the most used public tags.
func (s *SupabaseClient) LibraryFacets(ctx context.Context) (*models.LibraryFacets, error) {
	if cached, found := s.cache.Get(facetsCacheKey); found {
		return cached.(*models.LibraryFacets), nil
	}

	var categoryRows []struct {
		Category *string `json:"category"`
	}
	categoryQuery := url.Values{}
	categoryQuery.Set("select", "category")
	categoryQuery.Set("is_public", "eq.true")
	categoryQuery.Set("category", "not.is.null")
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(promptsTableName), query: categoryQuery}, &categoryRows); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var tagRows []struct {
		Tags []string `json:"tags"`
	}
	tagQuery := url.Values{}
	tagQuery.Set("select", "tags")
	tagQuery.Set("is_public", "eq.true")
	tagQuery.Set("tags", "not.is.null")
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(promptsTableName), query: tagQuery}, &tagRows); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	seen := make(map[string]bool)
	categories := []string{}
	for _, row := range categoryRows {
		if row.Category == nil || *row.Category == "" || seen[*row.Category] {
			continue
		}
		seen[*row.Category] = true
		categories = append(categories, *row.Category)
	}
	sort.Strings(categories)

	tagCounts := make(map[string]int)
	for _, row := range tagRows {
		for _, tag := range row.Tags {
			tagCounts[tag]++
		}
	}

	facets := &models.LibraryFacets{
		Categories:  categories,
		PopularTags: topTags(tagCounts, popularTagsLimit),
	}
	s.cache.Set(facetsCacheKey, facets, facetsCacheTTL)
	return facets, nil
}

// GetPublicPrompt returns a public prompt with its author.
func (s *SupabaseClient) GetPublicPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	query := url.Values{}
	query.Set("select", promptWithAuthorSelect)
	query.Set("id", eq(id))
	query.Set("is_public", "eq.true")
	query.Set("limit", "1")

	var prompts []models.Prompt
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(promptsTableName), query: query}, &prompts); err != nil {
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	if len(prompts) == 0 {
		return nil, ErrNotFound
	}
	return &prompts[0], nil
}

// RelatedPrompts returns public prompts sharing the category or a tag with prompt.
func (s *SupabaseClient) RelatedPrompts(ctx context.Context, prompt *models.Prompt, limit int) ([]models.Prompt, error) {
	var conditions []string
	if prompt.Category != nil && *prompt.Category != "" {
		conditions = append(conditions, "category.eq."+quote(*prompt.Category))
	}
	if len(prompt.Tags) > 0 {
		conditions = append(conditions, "tags.ov."+arrayLiteral(prompt.Tags))
	}
	if len(conditions) == 0 {
		return []models.Prompt{}, nil
	}

	query := url.Values{}
	query.Set("select", promptWithAuthorSelect)
	query.Set("is_public", "eq.true")
	query.Set("id", "neq."+prompt.Id)
	query.Set("or", "("+strings.Join(conditions, ",")+")")
	query.Set("order", "created_at.desc")
	query.Set("limit", strconv.Itoa(limit))

	related := []models.Prompt{}
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(promptsTableName), query: query}, &related); err != nil {
		return nil, fmt.Errorf("failed to list related prompts: %w", err)
	}
	return related, nil
}

// ListUserPrompts returns the prompts owned by userId, newest first.
func (s *SupabaseClient) ListUserPrompts(ctx context.Context, token, userId string, filter models.PromptFilter) ([]models.Prompt, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", eq(userId))
	query.Set("order", "created_at.desc")
	if filter.Search != "" {
		query.Set("or", searchFilter(filter.Search, "title", "description"))
	}
	switch filter.Visibility {
	case models.VisibilityPublic:
		query.Set("is_public", "eq.true")
	case models.VisibilityPrivate:
		query.Set("is_public", "eq.false")
	}

	prompts := []models.Prompt{}
	if err := s.do(ctx, request{method: http.MethodGet, path: tablePath(promptsTableName), query: query, token: token}, &prompts); err != nil {
		return nil, fmt.Errorf("failed to list user prompts: %w", err)
	}
	return prompts, nil
}

func (s *SupabaseClient) CreatePrompt(ctx context.Context, token, userId string, input models.PromptInput) (*models.Prompt, error) {
	prompt := models.Prompt{
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		Category:    input.Category,
		Tags:        input.NormalizedTags(),
		IsPublic:    input.IsPublic,
		UserId:      userId,
	}

	var created []models.Prompt
	err := s.do(ctx, request{
		method: http.MethodPost,
		path:   tablePath(promptsTableName),
		token:  token,
		prefer: preferRepresentation,
		body:   prompt,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to create prompt: empty response")
	}
	s.cache.Delete(facetsCacheKey)
	return &created[0], nil
}

func (s *SupabaseClient) UpdatePrompt(ctx context.Context, token, userId, id string, input models.PromptInput) (*models.Prompt, error) {
	query := url.Values{}
	query.Set("id", eq(id))
	query.Set("user_id", eq(userId))

	changes := map[string]interface{}{
		"title":       input.Title,
		"description": input.Description,
		"content":     input.Content,
		"category":    input.Category,
		"tags":        input.NormalizedTags(),
		"is_public":   input.IsPublic,
		"updated_at":  time.Now().UTC(),
	}

	var updated []models.Prompt
	err := s.do(ctx, request{
		method: http.MethodPatch,
		path:   tablePath(promptsTableName),
		query:  query,
		token:  token,
		prefer: preferRepresentation,
		body:   changes,
	}, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	s.cache.Delete(facetsCacheKey)
	return &updated[0], nil
}

func (s *SupabaseClient) DeletePrompt(ctx context.Context, token, userId, id string) error {
	query := url.Values{}
	query.Set("id", eq(id))
	query.Set("user_id", eq(userId))

	var deleted []models.Prompt
	err := s.do(ctx, request{
		method: http.MethodDelete,
		path:   tablePath(promptsTableName),
		query:  query,
		token:  token,
		prefer: preferRepresentation,
	}, &deleted)
	if err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	s.cache.Delete(facetsCacheKey)
	return nil
}

// searchFilter builds an or=(...) filter matching term case-insensitively in any column.
func searchFilter(term string, columns ...string) string {
	conditions := make([]string, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, column+".ilike."+quote("*"+term+"*"))
	}
	return "(" + strings.Join(conditions, ",") + ")"
}

func topTags(counts map[string]int, limit int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
