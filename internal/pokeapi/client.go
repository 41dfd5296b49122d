// Package pokeapi is a typed client for the three PokéAPI endpoints the
// seeder needs, plus the sprite CDN. Requests are rate limited and
// retried; 404s surface as ErrNotFound because dex holes are expected.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pidex/pidex/internal/config"
	"github.com/pidex/pidex/internal/model"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

const (
	maxAttempts    = 3
	defaultBackoff = 500 * time.Millisecond
	maxSpriteBytes = 4 << 20
)

// Client talks to PokéAPI.
type Client struct {
	baseURL       string
	spriteBaseURL string
	http          *http.Client
	limiter       *limiter

	clock   clockwork.Clock
	backoff time.Duration
}

// New creates a Client. A nil httpClient gets a default with the
// configured timeout; clock drives the rate limiter and retry backoff.
func New(cfg config.PokeAPIConfig, httpClient *http.Client, clock clockwork.Clock) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		spriteBaseURL: cfg.SpriteBaseURL,
		http:          httpClient,
		limiter:       newLimiter(cfg.RequestsPerSecond, clock),
		clock:         clock,
		backoff:       defaultBackoff,
	}
}

// Pokemon fetches /pokemon/{id} converted to the domain model. The
// species portion is filled by a separate Species call.
func (c *Client) Pokemon(ctx context.Context, id int) (*model.Pokemon, error) {
	var dto pokemonDTO
	if err := c.getJSON(ctx, fmt.Sprintf("%s/pokemon/%d", c.baseURL, id), &dto); err != nil {
		return nil, fmt.Errorf("fetching pokemon %d: %w", id, err)
	}
	return dto.toModel(), nil
}

// Species fetches /pokemon-species/{id}.
func (c *Client) Species(ctx context.Context, id int) (*model.Species, int, error) {
	var dto speciesDTO
	if err := c.getJSON(ctx, fmt.Sprintf("%s/pokemon-species/%d", c.baseURL, id), &dto); err != nil {
		return nil, 0, fmt.Errorf("fetching species %d: %w", id, err)
	}
	sp, generation := dto.toModel()
	return sp, generation, nil
}

// EvolutionChain fetches /evolution-chain/{id} flattened into edges.
func (c *Client) EvolutionChain(ctx context.Context, id int) ([]model.EvolutionEdge, error) {
	var dto chainDTO
	if err := c.getJSON(ctx, fmt.Sprintf("%s/evolution-chain/%d", c.baseURL, id), &dto); err != nil {
		return nil, fmt.Errorf("fetching evolution chain %d: %w", id, err)
	}
	return dto.toEdges(), nil
}

// SpritePNG fetches the front sprite PNG for a dex id.
func (c *Client) SpritePNG(ctx context.Context, id int) ([]byte, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%d.png", c.spriteBaseURL, id))
	if err != nil {
		return nil, fmt.Errorf("fetching sprite %d: %w", id, err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// get performs a rate-limited GET with retries on 5xx/429 and transport
// errors. 404 fails immediately with ErrNotFound.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(delay):
			}
		}

		if err := c.limiter.wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.doOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "pidex/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxSpriteBytes))
		if err != nil {
			return nil, true, fmt.Errorf("reading response: %w", err)
		}
		return data, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	default:
		return nil, false, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
}

// limiter enforces a minimum gap between requests.
type limiter struct {
	clock clockwork.Clock
	gap   time.Duration
	next  time.Time
}

func newLimiter(requestsPerSecond int, clock clockwork.Clock) *limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &limiter{
		clock: clock,
		gap:   time.Second / time.Duration(requestsPerSecond),
	}
}

func (l *limiter) wait(ctx context.Context) error {
	now := l.clock.Now()
	if now.Before(l.next) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(l.next.Sub(now)):
		}
	}
	l.next = l.clock.Now().Add(l.gap)
	return nil
}
