package xapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// MissingTokenMessage is reported when no bearer token is configured
const MissingTokenMessage = "Error: X_BEARER_TOKEN environment variable not set. Please add your X.com API Bearer Token to the .env file."

// ProfileFetcher builds the post digest for a list of profiles
type ProfileFetcher struct {
	client  *Client
	limiter *RateLimiter
	cfg     config.XConfig
	logger  app.Logger
	now     func() time.Time
}

// NewProfileFetcher creates a fetcher from the X section of the config.
// Close releases the rate limiter.
func NewProfileFetcher(cfg config.XConfig, httpClient *http.Client, logger app.Logger) *ProfileFetcher {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	if cfg.FallbackCount <= 0 {
		cfg.FallbackCount = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	retry := DefaultRetryConfig()
	if cfg.MaxRetries >= 0 {
		retry.MaxRetries = cfg.MaxRetries
	}

	limiter := NewRateLimiter(cfg.RequestsPerMinute)
	return &ProfileFetcher{
		client:  NewClient(cfg.BaseURL, cfg.BearerToken, httpClient, limiter, retry),
		limiter: limiter,
		cfg:     cfg,
		logger:  app.LoggerOrDefault(logger),
		now:     time.Now,
	}
}

// Close stops the rate limiter
func (f *ProfileFetcher) Close() error {
	f.limiter.Close()
	return nil
}

// Fetch returns one section per profile, in input order. Per-profile
// failures become error sections and a missing token yields a digest holding
// MissingTokenMessage; only a cancelled context fails the whole batch.
func (f *ProfileFetcher) Fetch(ctx context.Context, usernames []string) (social.Digest, error) {
	if f.cfg.BearerToken == "" {
		return social.Digest{Sections: []social.Section{social.MessageSection(MissingTokenMessage)}}, nil
	}

	names := social.NormalizeUsernames(usernames)
	sections := make([]social.Section, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			sections[i] = f.fetchProfile(gctx, name)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return social.Digest{}, err
	}

	return social.Digest{Sections: sections}, nil
}

// fetchProfile resolves one username and selects its posts: the lookback
// window first, then the most recent posts when the window is empty.
func (f *ProfileFetcher) fetchProfile(ctx context.Context, username string) social.Section {
	f.logger.Debug("Fetching posts for @%s", username)

	user, err := f.client.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return social.NotFoundSection(username)
		}
		return social.UserErrorSection(username, err)
	}

	posts, err := f.client.UserPosts(ctx, user.ID, TimelineQuery{
		StartTime:  f.now().Add(-f.cfg.Lookback),
		MaxResults: f.cfg.MaxResults,
	})
	if err != nil {
		return social.TweetsErrorSection(username, err)
	}
	if len(posts) > 0 {
		return social.PostsSection(username, social.WindowLast24Hours, posts)
	}

	posts, err = f.client.UserPosts(ctx, user.ID, TimelineQuery{MaxResults: f.cfg.FallbackCount})
	if err != nil {
		return social.TweetsErrorSection(username, err)
	}
	if len(posts) == 0 {
		return social.EmptySection(username)
	}
	return social.PostsSection(username, social.WindowMostRecent, posts)
}
