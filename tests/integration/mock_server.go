package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MockAPIServer simulates the identity and bulk lookup endpoints with
// realistic envelopes. Metrics are a pure function of the id, so tests
// can recompute what any record must have contained.
type MockAPIServer struct {
	server *httptest.Server

	meCalls       int32
	rateLimitHits int32

	mu           sync.Mutex
	tweetBatches [][]string
	userBatches  [][]string

	// pending 429s served before /2/tweets succeeds
	rateLimitNext int32
}

// NewMockAPIServer starts the server. The authorized identity is
// always @jonhoo.
func NewMockAPIServer() *MockAPIServer {
	m := &MockAPIServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/2/users/me", m.handleMe)
	mux.HandleFunc("/2/tweets", m.handleTweets)
	mux.HandleFunc("/2/users", m.handleUsers)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the base URL clients should target.
func (m *MockAPIServer) URL() string {
	return m.server.URL
}

// Client returns an HTTP client wired to the server.
func (m *MockAPIServer) Client() *http.Client {
	return m.server.Client()
}

// Close shuts the server down.
func (m *MockAPIServer) Close() {
	m.server.Close()
}

// RateLimitNext makes the next n tweet lookups fail with 429 and a
// reset stamp of right now, which a conforming client absorbs by
// retrying immediately.
func (m *MockAPIServer) RateLimitNext(n int) {
	atomic.StoreInt32(&m.rateLimitNext, int32(n))
}

// MeCalls reports how many identity lookups were served.
func (m *MockAPIServer) MeCalls() int {
	return int(atomic.LoadInt32(&m.meCalls))
}

// RateLimitHits reports how many 429 responses were served.
func (m *MockAPIServer) RateLimitHits() int {
	return int(atomic.LoadInt32(&m.rateLimitHits))
}

// TweetBatches returns the ids of each tweet lookup, in arrival order.
func (m *MockAPIServer) TweetBatches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.tweetBatches...)
}

// UserBatches returns the ids of each user lookup, in arrival order.
func (m *MockAPIServer) UserBatches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.userBatches...)
}

func (m *MockAPIServer) handleMe(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.meCalls, 1)
	w.Write([]byte(`{"data":{"id":"2979962073","username":"jonhoo"}}`))
}

func (m *MockAPIServer) handleTweets(w http.ResponseWriter, r *http.Request) {
	if atomic.AddInt32(&m.rateLimitNext, -1) >= 0 {
		atomic.AddInt32(&m.rateLimitHits, 1)
		w.Header().Set("x-rate-limit-reset", strconv.FormatInt(time.Now().Unix(), 10))
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
		return
	}

	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	m.mu.Lock()
	m.tweetBatches = append(m.tweetBatches, ids)
	m.mu.Unlock()

	data := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		n, _ := strconv.ParseUint(id, 10, 64)
		data = append(data, map[string]interface{}{
			"id":         id,
			"created_at": TweetCreated(n).Format(time.RFC3339),
			"public_metrics": map[string]uint64{
				"like_count":    TweetLikes(n),
				"retweet_count": n % 100,
				"reply_count":   n % 50,
				"quote_count":   n % 10,
			},
		})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func (m *MockAPIServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	m.mu.Lock()
	m.userBatches = append(m.userBatches, ids)
	m.mu.Unlock()

	data := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		n, _ := strconv.ParseUint(id, 10, 64)
		data = append(data, map[string]interface{}{
			"id":       id,
			"username": fmt.Sprintf("user%d", n),
			"public_metrics": map[string]uint64{
				"followers_count": n % 10000,
				"following_count": n % 100,
			},
		})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

// TweetLikes is the like count the server reports for a tweet id.
func TweetLikes(id uint64) uint64 {
	return id % 1000
}

// TweetCreated is the posting time the server reports for a tweet id.
// Later ids post later, which keeps time-ordered rankings meaningful.
func TweetCreated(id uint64) time.Time {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(id) * time.Minute)
}
