package integration

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"ornithology/pkg/archive"
	"ornithology/pkg/auth"
	"ornithology/pkg/config"
	"ornithology/pkg/enrich"
	"ornithology/pkg/logger"
)

const (
	liveTweetBase = 1000
	retweetBase   = 100000
	followerBase  = 500000
)

// TestHelper bundles what an end-to-end run needs: an export archive
// on disk, a mock API server, and a config pointing at both.
type TestHelper struct {
	t      *testing.T
	server *MockAPIServer

	NegotiateCalls int
}

// NewTestHelper starts a mock API server tied to the test lifetime.
func NewTestHelper(t *testing.T) *TestHelper {
	h := &TestHelper{t: t, server: NewMockAPIServer()}
	t.Cleanup(h.server.Close)
	return h
}

// Server returns the mock API server.
func (h *TestHelper) Server() *MockAPIServer {
	return h.server
}

// WriteExportArchive builds an export zip with the given number of
// ordinary tweets, retweets, and followers, and returns its path.
// Ids are assigned from the fixed per-kind bases.
func (h *TestHelper) WriteExportArchive(liveTweets, retweets, followers int) string {
	h.t.Helper()

	var tweets []string
	for i := 0; i < liveTweets; i++ {
		tweets = append(tweets,
			fmt.Sprintf(`{"tweet": {"id": "%d", "full_text": "tweet number %d"}}`, liveTweetBase+i, i))
	}
	for i := 0; i < retweets; i++ {
		tweets = append(tweets,
			fmt.Sprintf(`{"tweet": {"id": "%d", "full_text": "RT @other: their words"}}`, retweetBase+i))
	}

	var accounts []string
	for i := 0; i < followers; i++ {
		accounts = append(accounts,
			fmt.Sprintf(`{"follower": {"accountId": "%d"}}`, followerBase+i))
	}

	members := map[string]string{
		archive.TweetsMember:    "window.YTD.tweet.part0 = [\n" + strings.Join(tweets, ",\n") + "\n]",
		archive.FollowersMember: "window.YTD.follower.part0 = [\n" + strings.Join(accounts, ",\n") + "\n]",
	}

	path := filepath.Join(h.t.TempDir(), "export.zip")
	f, err := os.Create(path)
	if err != nil {
		h.t.Fatalf("Failed to create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			h.t.Fatalf("Failed to create member %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			h.t.Fatalf("Failed to write member %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		h.t.Fatalf("Failed to close archive: %v", err)
	}
	return path
}

// Config returns defaults with the cache redirected into a temp dir.
func (h *TestHelper) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Cache.Path = filepath.Join(h.t.TempDir(), "cache.json")
	return cfg
}

// Options wires a run to the mock server with a canned credential.
func (h *TestHelper) Options(archivePath string) enrich.Options {
	return enrich.Options{
		ArchivePath: archivePath,
		Logger:      logger.NewNopLogger(),
		Negotiate:   h.negotiate,
		BaseURL:     h.server.URL(),
		HTTPClient:  h.server.Client(),
	}
}

func (h *TestHelper) negotiate(ctx context.Context, cfg auth.Config) (*oauth2.Token, error) {
	h.NegotiateCalls++
	return &oauth2.Token{AccessToken: "integration-credential"}, nil
}

// LiveTweetIDs lists the decimal ids WriteExportArchive assigns to n
// ordinary tweets.
func LiveTweetIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprint(liveTweetBase + i)
	}
	return ids
}

// FollowerIDs lists the decimal ids WriteExportArchive assigns to n
// followers.
func FollowerIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprint(followerBase + i)
	}
	return ids
}
