// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteResolver asks the store's auth API who a token belongs to.
type RemoteResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRemoteResolver creates a resolver for {baseURL}/auth/v1/user.
func NewRemoteResolver(baseURL, apiKey string, timeout time.Duration) *RemoteResolver {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &RemoteResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *RemoteResolver) ResolveUser(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth http: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("auth: unexpected status %d", resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("auth decode: %w", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	return &u, nil
}
