package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
)

const (
	promptsTableName           = "prompts"
	collectionsTableName       = "collections"
	collectionPromptsTableName = "collection_prompts"
	profilesTableName          = "profiles"

	restPath = "/rest/v1/"
	authPath = "/auth/v1/user"

	preferRepresentation = "return=representation"
	preferUpsert         = "resolution=merge-duplicates,return=representation"
)

// ErrNotFound is returned when a single record lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrUnauthorized is returned when the auth provider rejects the caller token.
var ErrUnauthorized = errors.New("invalid or expired access token")

// SupabaseClient talks to the PostgREST and auth endpoints of a Supabase
// project. Calls made with a caller token run under that user's row level security.
type SupabaseClient struct {
	superbaseConfig config.SupabaseConfig
	httpClient      *http.Client
	cache           *cache.Cache
}

func NewSupabaseClient(superbaseConfig config.SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{
		superbaseConfig: superbaseConfig,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		cache:           cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Configured reports whether a project url and key are set.
func (s *SupabaseClient) Configured() bool {
	return s.superbaseConfig.Url != "" && s.superbaseConfig.Key != ""
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	prefer string
	body   interface{}
}

func (s *SupabaseClient) newRequest(ctx context.Context, r request) (*http.Request, error) {
	apiURL := strings.TrimRight(s.superbaseConfig.Url, "/") + r.path
	if len(r.query) > 0 {
		apiURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	bearer := s.superbaseConfig.Key
	if r.token != "" {
		bearer = r.token
	}
	req.Header.Set("apikey", s.superbaseConfig.Key)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}
	return req, nil
}

// do executes r and decodes the JSON response into out when out is not nil.
func (s *SupabaseClient) do(ctx context.Context, r request, out interface{}) error {
	req, err := s.newRequest(ctx, r)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed, status code: %d, response: %s", r.method, r.path, resp.StatusCode, string(bodyBytes))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func tablePath(table string) string {
	return restPath + table
}

// eq builds a PostgREST equality filter.
func eq(value string) string {
	return "eq." + value
}

// quote wraps a filter value so reserved characters (, . : ( )) are taken literally.
func quote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

// arrayLiteral renders values as a postgres array literal for ov/cs filters.
func arrayLiteral(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, quote(value))
	}
	return "{" + strings.Join(quoted, ",") + "}"
}
