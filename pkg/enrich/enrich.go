// Package enrich drives a full acquisition run: read the export
// archive, authorize against the API, fetch current public metrics for
// every tweet and follower, and cache the joined result.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"ornithology/pkg/archive"
	"ornithology/pkg/auth"
	"ornithology/pkg/cache"
	"ornithology/pkg/config"
	"ornithology/pkg/logger"
	"ornithology/pkg/twitter"
)

// Result is the enriched dataset: identifiers extracted from the
// archive joined with the metrics the API reports for them today.
// Retweets of others are kept as bare ids; their engagement belongs to
// the original author, so they are excluded from ranking.
type Result struct {
	Me            string          `json:"me"`
	OldRetweetIDs []uint64        `json:"old_rt_ids"`
	Tweets        []twitter.Tweet `json:"tweets"`
	Followers     []twitter.User  `json:"followers"`
}

// Options configures a run beyond what the file config carries.
type Options struct {
	ArchivePath string
	// Fresh ignores a cached result and refetches everything.
	Fresh  bool
	Logger logger.Logger

	OnProgress  twitter.ProgressFunc
	OnRateLimit func(wait time.Duration)

	// Negotiate obtains the API credential; nil runs the interactive
	// browser authorization.
	Negotiate func(context.Context, auth.Config) (*oauth2.Token, error)
	// BaseURL and HTTPClient override the production API endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// Load returns the enriched dataset. A cached result short-circuits
// the whole run unless Fresh is set; otherwise the archive is read,
// the user authorizes once, and every id is looked up live. The fresh
// result is cached before it is returned.
func Load(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	store := cache.NewStore[Result](cfg.Cache.Path)
	if !opts.Fresh {
		cached, err := store.Load()
		if err != nil {
			return nil, err
		}
		if cached != nil {
			log.InfoWithFields("using cached dataset", map[string]interface{}{
				"path":      store.Path(),
				"tweets":    len(cached.Tweets),
				"followers": len(cached.Followers),
			})
			return cached, nil
		}
	}

	oldRTs, tweetIDs, followerIDs, err := readArchive(opts.ArchivePath)
	if err != nil {
		return nil, err
	}
	log.InfoWithFields("archive read", map[string]interface{}{
		"tweets":       len(tweetIDs),
		"old_retweets": len(oldRTs),
		"followers":    len(followerIDs),
	})

	negotiate := opts.Negotiate
	if negotiate == nil {
		negotiate = auth.Negotiate
	}
	token, err := negotiate(ctx, auth.Config{
		ClientID:     cfg.Twitter.ClientID,
		Scopes:       twitter.OAuthScopes,
		Endpoint:     twitter.OAuthEndpoint(),
		CallbackPort: cfg.Twitter.CallbackPort,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}

	client := twitter.NewClient(token, twitter.Options{
		BaseURL:     opts.BaseURL,
		Timeout:     cfg.Twitter.Timeout,
		HTTPClient:  opts.HTTPClient,
		Logger:      log,
		PageSize:    cfg.Fetch.PageSize,
		Budget:      cfg.Fetch.Budget,
		Window:      cfg.Fetch.Window,
		OnProgress:  opts.OnProgress,
		OnRateLimit: opts.OnRateLimit,
	})

	me, err := client.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}
	log.InfoWithFields("authorized", map[string]interface{}{
		"username": me.Username,
		"id":       uint64(me.ID),
	})

	tweets, err := client.Tweets(ctx, tweetIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch tweets: %w", err)
	}
	followers, err := client.Users(ctx, followerIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch followers: %w", err)
	}

	result := &Result{
		Me:            me.Username,
		OldRetweetIDs: oldRTs,
		Tweets:        tweets,
		Followers:     followers,
	}
	if err := store.Save(result); err != nil {
		return nil, err
	}
	return result, nil
}

// readArchive extracts the id lists from the export. Tweets that are
// retweets of others are split off by their "RT @" text prefix.
func readArchive(path string) (oldRTs, tweetIDs, followerIDs []uint64, err error) {
	ar, err := archive.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer ar.Close()

	followerIDs, err = archive.Extract(ar, archive.FollowersMember,
		func(r archive.FollowerRecord) (uint64, bool) { return r.ID, true })
	if err != nil {
		return nil, nil, nil, fmt.Errorf("extract follower list: %w", err)
	}

	oldRTs = []uint64{}
	tweetIDs, err = archive.Extract(ar, archive.TweetsMember,
		func(r archive.TweetRecord) (uint64, bool) {
			if strings.HasPrefix(r.Text, "RT @") {
				oldRTs = append(oldRTs, r.ID)
				return 0, false
			}
			return r.ID, true
		})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("extract tweet list: %w", err)
	}

	return oldRTs, tweetIDs, followerIDs, nil
}
