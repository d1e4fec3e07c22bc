package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"ornithology/pkg/logger"
)

// redirect is the data the provider sends back through the user's
// browser: an authorization code and our state echo, or an error.
type redirect struct {
	code  string
	state string
	err   *Error
}

// callbackServer is a loopback-only HTTP server that receives a single
// authorization redirect and then goes quiet.
type callbackServer struct {
	srv      *http.Server
	listener net.Listener
	got      chan redirect
	logger   logger.Logger

	mu    sync.Mutex
	taken bool
}

// newCallbackServer starts listening on 127.0.0.1:port. Port 0 picks a
// free port; use RedirectURL to learn the bound address.
func newCallbackServer(port int, log logger.Logger) (*callbackServer, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for authorization redirect: %w", err)
	}

	s := &callbackServer{
		listener: ln,
		got:      make(chan redirect, 1),
		logger:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handle)
	s.srv = &http.Server{Handler: mux}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorWithFields("callback server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	log.DebugWithFields("callback server listening", map[string]interface{}{
		"addr": ln.Addr().String(),
	})
	return s, nil
}

func (s *callbackServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errCode, code := q.Get("error"), q.Get("code")
	if errCode == "" && code == "" {
		// Not an authorization redirect; leave the slot open.
		http.Error(w, "malformed authorization redirect", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.taken {
		s.mu.Unlock()
		http.Error(w, "authorization redirect already consumed", http.StatusGone)
		return
	}
	s.taken = true
	s.mu.Unlock()

	var red redirect
	if errCode != "" {
		red.err = &Error{
			Kind:        ErrorKind(errCode),
			Description: q.Get("error_description"),
			URI:         q.Get("error_uri"),
		}
	} else {
		red.code = code
		red.state = q.Get("state")
	}
	s.got <- red

	w.WriteHeader(http.StatusCreated)
	fmt.Fprint(w, "Please return to the CLI")
}

// Port reports the bound port.
func (s *callbackServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// RedirectURL is the address to register as the flow's redirect URI.
func (s *callbackServer) RedirectURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", s.Port())
}

// Wait blocks until the redirect arrives or ctx ends.
func (s *callbackServer) Wait(ctx context.Context) (redirect, error) {
	select {
	case <-ctx.Done():
		return redirect{}, ctx.Err()
	case red := <-s.got:
		return red, nil
	}
}

// Close shuts the server down, letting an in-flight response finish.
func (s *callbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
