package client

import "sync"

type tokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *tokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *tokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *tokenStore) Clear() { s.Set("") }
