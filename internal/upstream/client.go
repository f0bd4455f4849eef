// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
	"github.com/tomtom215/craftledger/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read back
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// CatalogClient is the surface the job runner and scheduler consume.
// Implemented by Client for production and by the circuit breaker wrapper;
// tests substitute fakes.
//
// All methods are safe for concurrent use and honor context cancellation,
// including during backoff waits.
type CatalogClient interface {
	Ping(ctx context.Context) error
	Professions(ctx context.Context) ([]Profession, error)
	TierRecipes(ctx context.Context, profession Profession, tier Tier) ([]models.MasterCacheEntry, error)
	QuestAreas(ctx context.Context) ([]QuestArea, error)
	AreaQuests(ctx context.Context, area QuestArea) ([]models.MasterCacheEntry, error)
	Characters(ctx context.Context, userID string) ([]Character, error)
	CharacterProfessions(ctx context.Context, userID string, characterID int64) ([]CharacterProfession, error)
	CompletedQuests(ctx context.Context, userID string, characterID int64) ([]int64, error)
}

// Client talks to the upstream game-data REST API.
//
// The catalog walk is wide and shallow: professions fan out to tiers, tiers
// to recipe categories, areas to quest pages. Every request first waits on
// a client-side token bucket so the walk stays under the upstream's rate
// limit; 429 responses that slip through are retried with exponential
// backoff honoring Retry-After.
type Client struct {
	baseURL        string
	token          string
	region         string
	locale         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
	pageSize       int
}

// NewClient creates an upstream API client from configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 8
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		region:         cfg.Region,
		locale:         cfg.Locale,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:     cfg.RetryAttempts,
		retryBaseDelay: retryDelay,
		pageSize:       pageSize,
	}
}

// Ping verifies connectivity to the upstream API.
func (c *Client) Ping(ctx context.Context) error {
	var payload professionIndexPayload
	if err := c.getPage(ctx, "professions", "/data/professions", nil, &payload); err != nil {
		return fmt.Errorf("failed to ping upstream: %w", err)
	}
	return nil
}

// Professions returns every profession with its skill tiers. The index
// lists references only, so each profession costs one extra detail fetch.
func (c *Client) Professions(ctx context.Context) ([]Profession, error) {
	professions := make([]Profession, 0)
	page := 1
	for {
		var index professionIndexPayload
		if err := c.getPage(ctx, "professions", "/data/professions", pageParams(page, c.pageSize), &index); err != nil {
			return nil, err
		}

		for _, ref := range index.Results {
			var detail professionDetailPayload
			path := fmt.Sprintf("/data/professions/%d", ref.ID)
			if err := c.getPage(ctx, "professions", path, nil, &detail); err != nil {
				return nil, err
			}

			p := Profession{ID: detail.ID, Name: detail.Name.String()}
			for _, t := range detail.Tiers {
				p.Tiers = append(p.Tiers, Tier{ID: t.ID, Name: t.Name.String()})
			}
			professions = append(professions, p)
		}

		if index.Page >= index.PageCount || index.PageCount == 0 {
			return professions, nil
		}
		page++
	}
}

// TierRecipes fetches one profession tier and flattens its categories into
// catalog entries. Entries with an unresolvable name are skipped with a
// warning rather than failing the tier.
func (c *Client) TierRecipes(ctx context.Context, profession Profession, tier Tier) ([]models.MasterCacheEntry, error) {
	var detail tierDetailPayload
	path := fmt.Sprintf("/data/professions/%d/tiers/%d", profession.ID, tier.ID)
	if err := c.getPage(ctx, "tiers", path, nil, &detail); err != nil {
		return nil, err
	}

	entries := make([]models.MasterCacheEntry, 0)
	for _, category := range detail.Categories {
		for _, r := range category.Recipes {
			if r.Name.IsZero() {
				logging.Warn().Int64("recipe_id", r.ID).Int64("profession_id", profession.ID).
					Int64("tier_id", tier.ID).Msg("Skipping recipe with unresolvable name")
				continue
			}
			entries = append(entries, models.MasterCacheEntry{
				ID:             r.ID,
				Kind:           models.EntryKindRecipe,
				Name:           r.Name.String(),
				ProfessionID:   profession.ID,
				ProfessionName: profession.Name,
				TierID:         tier.ID,
				TierName:       tier.Name,
				CategoryName:   category.Name.String(),
			})
		}
	}
	return entries, nil
}

// QuestAreas returns every quest zone from the paginated area index.
func (c *Client) QuestAreas(ctx context.Context) ([]QuestArea, error) {
	areas := make([]QuestArea, 0)
	page := 1
	for {
		var index areaIndexPayload
		if err := c.getPage(ctx, "quest_areas", "/data/quest-areas", pageParams(page, c.pageSize), &index); err != nil {
			return nil, err
		}

		for _, ref := range index.Results {
			areas = append(areas, QuestArea{
				ID:         ref.ID,
				Name:       ref.Name.String(),
				Expansion:  ref.Expansion.String(),
				IsSeasonal: ref.IsSeasonal,
			})
		}

		if index.Page >= index.PageCount || index.PageCount == 0 {
			return areas, nil
		}
		page++
	}
}

// AreaQuests fetches every quest in one zone as catalog entries.
func (c *Client) AreaQuests(ctx context.Context, area QuestArea) ([]models.MasterCacheEntry, error) {
	entries := make([]models.MasterCacheEntry, 0)
	page := 1
	for {
		var payload areaQuestsPayload
		path := fmt.Sprintf("/data/quest-areas/%d", area.ID)
		if err := c.getPage(ctx, "quests", path, pageParams(page, c.pageSize), &payload); err != nil {
			return nil, err
		}

		for _, q := range payload.Quests {
			if q.Name.IsZero() {
				logging.Warn().Int64("quest_id", q.ID).Int64("area_id", area.ID).
					Msg("Skipping quest with unresolvable name")
				continue
			}
			entries = append(entries, models.MasterCacheEntry{
				ID:            q.ID,
				Kind:          models.EntryKindQuest,
				Name:          q.Name.String(),
				AreaID:        area.ID,
				AreaName:      area.Name,
				ExpansionName: area.Expansion,
				IsSeasonal:    area.IsSeasonal,
			})
		}

		if payload.Page >= payload.PageCount || payload.PageCount == 0 {
			return entries, nil
		}
		page++
	}
}

// Characters lists the characters on a user's account.
func (c *Client) Characters(ctx context.Context, userID string) ([]Character, error) {
	var payload characterIndexPayload
	path := fmt.Sprintf("/profile/%s/characters", url.PathEscape(userID))
	if err := c.getPage(ctx, "characters", path, nil, &payload); err != nil {
		return nil, err
	}

	characters := make([]Character, 0, len(payload.Characters))
	for _, ch := range payload.Characters {
		characters = append(characters, Character{
			ID:    ch.ID,
			Name:  ch.Name.String(),
			Realm: ch.Realm.String(),
		})
	}
	return characters, nil
}

// CharacterProfessions returns the full known-recipe state of one
// character, per profession tier.
func (c *Client) CharacterProfessions(ctx context.Context, userID string, characterID int64) ([]CharacterProfession, error) {
	var payload characterProfessionsPayload
	path := fmt.Sprintf("/profile/%s/characters/%d/professions", url.PathEscape(userID), characterID)
	if err := c.getPage(ctx, "character_professions", path, nil, &payload); err != nil {
		return nil, err
	}

	professions := make([]CharacterProfession, 0, len(payload.Professions))
	for _, p := range payload.Professions {
		cp := CharacterProfession{ProfessionID: p.Profession.ID}
		for _, t := range p.Tiers {
			ct := CharacterTier{TierID: t.Tier.ID}
			for _, r := range t.KnownRecipes {
				ct.KnownRecipeIDs = append(ct.KnownRecipeIDs, r.ID)
			}
			cp.Tiers = append(cp.Tiers, ct)
		}
		professions = append(professions, cp)
	}
	return professions, nil
}

// CompletedQuests returns the ids of every quest a character has
// completed. Quest completion is credited account-wide by the caller; the
// upstream only exposes it per character.
func (c *Client) CompletedQuests(ctx context.Context, userID string, characterID int64) ([]int64, error) {
	ids := make([]int64, 0)
	page := 1
	for {
		var payload completedQuestsPayload
		path := fmt.Sprintf("/profile/%s/characters/%d/quests/completed", url.PathEscape(userID), characterID)
		if err := c.getPage(ctx, "completed_quests", path, pageParams(page, c.pageSize), &payload); err != nil {
			return nil, err
		}

		for _, q := range payload.Quests {
			ids = append(ids, q.ID)
		}

		if payload.Page >= payload.PageCount || payload.PageCount == 0 {
			return ids, nil
		}
		page++
	}
}

// getPage performs one GET against the API: rate-limiter wait, auth and
// locale decoration, bounded 429 retries, status mapping into the error
// taxonomy, and JSON decode.
func (c *Client) getPage(ctx context.Context, resource, path string, params url.Values, result any) error {
	start := time.Now()
	err := c.doGetPage(ctx, path, params, result)
	metrics.RecordUpstreamRequest(resource, time.Since(start), errorType(err))
	return err
}

func (c *Client) doGetPage(ctx context.Context, path string, params url.Values, result any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("region", c.region)
	if c.locale != "" {
		params.Set("locale", c.locale)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s returned status %d: %s", ErrUnavailable, path, resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidPayload, path, err)
	}
	return nil
}

// doRequestWithRateLimit issues the request after a token-bucket wait and
// retries 429 responses with exponential backoff (honoring Retry-After).
// All waits are cancellable through the context.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		metrics.UpstreamRateLimitHits.Inc()
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w: still throttled after %d retries", ErrRateLimited, c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		metrics.UpstreamRetries.Inc()
		logging.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("Upstream rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func pageParams(page, pageSize int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	return params
}

// readBodyForError reads at most maxErrorBodySize of a response body for
// error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// errorType maps an error to its metric label.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}
