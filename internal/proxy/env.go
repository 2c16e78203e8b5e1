package proxy

import (
	"os"
	"sync"
)

// Process environment variables read by outbound HTTP clients
const (
	EnvHTTPProxy  = "HTTP_PROXY"
	EnvHTTPSProxy = "HTTPS_PROXY"
)

// Environment is the process environment as seen by the controller
type Environment interface {
	Setenv(key, value string) error
	Unsetenv(key string) error
	LookupEnv(key string) (string, bool)
}

// OSEnvironment is the real process environment
type OSEnvironment struct{}

func (OSEnvironment) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

func (OSEnvironment) Unsetenv(key string) error {
	return os.Unsetenv(key)
}

func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnvironment is an in-memory Environment
type MapEnvironment struct {
	mu   sync.Mutex
	vars map[string]string
}

func NewMapEnvironment() *MapEnvironment {
	return &MapEnvironment{vars: make(map[string]string)}
}

func (e *MapEnvironment) Setenv(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[key] = value
	return nil
}

func (e *MapEnvironment) Unsetenv(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vars, key)
	return nil
}

func (e *MapEnvironment) LookupEnv(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	value, ok := e.vars[key]
	return value, ok
}
