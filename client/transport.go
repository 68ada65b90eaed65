package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ErrRefreshFailed is returned when the token refresh call itself fails.
// The credential store is cleared before it is returned, forcing logout.
var ErrRefreshFailed = fmt.Errorf("token refresh failed")

// refreshTransport attaches the current access token to every request and
// performs at most one refresh-and-replay cycle per logical request on a
// 401. The retry state is a local variable, not a flag on shared request
// state, so its lifetime is exactly one RoundTrip call. Concurrent requests
// hitting 401 at the same time each run their own refresh; there is no
// process-wide de-duplication.
type refreshTransport struct {
	base    http.RoundTripper
	store   CredentialStore
	baseURL string
}

func (t *refreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds := t.store.Get()

	attempt := req.Clone(req.Context())
	if creds.Token != "" {
		attempt.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// First 401: try one refresh. Without a refresh token the original
	// response propagates unchanged.
	refreshToken := t.store.Get().RefreshToken
	if refreshToken == "" {
		return resp, nil
	}

	// A consumed body with no GetBody cannot be replayed; the 401 stands.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	newToken, refreshErr := t.refresh(req, refreshToken)
	if refreshErr != nil {
		resp.Body.Close()
		t.store.Clear()
		return nil, refreshErr
	}

	creds = t.store.Get()
	creds.Token = newToken
	if err := t.store.Set(creds); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	resp.Body.Close()

	// Replay exactly once with the new token. A second 401 propagates.
	replay := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}
	replay.Header.Set("Authorization", "Bearer "+newToken)

	return t.base.RoundTrip(replay)
}

// refresh calls the refresh endpoint directly on the base transport so the
// interceptor never recurses into itself.
func (t *refreshTransport) refresh(orig *http.Request, refreshToken string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(orig.Context(), http.MethodPost,
		t.baseURL+"/api/auth/refresh-token", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrRefreshFailed, resp.StatusCode, bytes.TrimSpace(body))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %s", ErrRefreshFailed, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrRefreshFailed)
	}

	return out.Token, nil
}
