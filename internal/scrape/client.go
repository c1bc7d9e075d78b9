package scrape

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobsweep/internal/location"
	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/network"
)

// DefaultAttempts is the retry cap for sequential runs; non-sequential
// runs use one fewer.
const (
	DefaultAttempts       = 4
	NonSequentialAttempts = 3
)

// Client issues provider requests with bounded retries, linear backoff,
// and proxy rotation. The rotator is shared with the orchestrator so its
// cursor advances across retries and board passes alike.
type Client struct {
	provider Provider
	rotator  *network.Rotator
	logger   zerolog.Logger

	// sleep is swappable in tests.
	sleep func(time.Duration)
	rand  *rand.Rand
}

func NewClient(provider Provider, rotator *network.Rotator, logger zerolog.Logger) *Client {
	return &Client{
		provider: provider,
		rotator:  rotator,
		logger:   logger,
		sleep:    time.Sleep,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Scrape runs one request through the provider, retrying transient
// failures up to attempts times. The caller's request value is never
// mutated. An empty ResultSet with a nil error means the request
// succeeded and genuinely returned no rows.
func (c *Client) Scrape(ctx context.Context, req Request, attempts int) (ResultSet, error) {
	cleaned, err := req.cleaned(c.logger)
	if err != nil {
		return nil, err
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	board := cleaned.Board()
	fallbackUsed := false
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := c.provider.Scrape(ctx, cleaned)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		c.logger.Debug().
			Str("board", board).
			Int("attempt", attempt+1).
			Err(err).
			Msg("scrape attempt failed")

		// Indeed occasionally fails to parse a country for remote
		// searches; substitute a national scope once and keep going.
		if !fallbackUsed && board == models.BoardIndeed &&
			errors.Is(err, ErrBadLocation) && location.IsRemote(cleaned.Location) {
			cleaned.Location = nationalScope(cleaned.Country)
			fallbackUsed = true
			attempt--
			continue
		}

		if c.rotator != nil {
			if proxy, rerr := c.rotator.Next(); rerr == nil {
				cleaned.Proxies = []string{proxy.String()}
			}
		}

		c.sleep(c.backoff(attempt))
	}

	return nil, &ScrapeError{Board: board, Attempts: attempts, Err: lastErr}
}

// backoff is a linear ramp with jitter: 1.0 + 0.7*attempt seconds plus up
// to 300ms of noise.
func (c *Client) backoff(attempt int) time.Duration {
	base := 1.0 + 0.7*float64(attempt)
	jitter := c.rand.Float64() * 0.3
	return time.Duration((base + jitter) * float64(time.Second))
}

func nationalScope(country string) string {
	if country == "" {
		return "USA"
	}
	return country
}
