package server

import (
	"fmt"
	"net/http"
	"sync"
)

// CallbackResult contains the outcome of a Discogs authorization redirect.
//
// Verifier is the oauth_verifier the backend needs to complete the token
// exchange; this process never sees Discogs credentials.
type CallbackResult struct {
	Verifier string
	State    string
	err      error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the redirect from Discogs after the user grants
// access. Implements the [Handler] interface for registration with a [Router].
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler expecting the given state token.
// The state token comes from the backend's authorize response and should be
// cryptographically random for CSRF protection.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// SetState replaces the expected state token. The listener has to be bound
// before the backend hands out a state, so the handler is constructed first
// and learns the state here.
func (h *CallbackHandler) SetState(state string) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the authorization redirect.
//
// Validates the state parameter, captures the oauth_verifier, and sends the
// result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	expected := h.state
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != expected {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	verifier := r.URL.Query().Get("oauth_verifier")
	if verifier == "" {
		denied := r.URL.Query().Get("denied")
		err := fmt.Errorf("authorization failed: access denied (token %s)", denied)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Verifier: verifier, State: state})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Discogs Connected</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #333; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Discogs Connected</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// The channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
