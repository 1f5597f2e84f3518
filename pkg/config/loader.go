// Package config loads environment-driven configuration structs. Each
// config type is loaded once per process and cached; a missing .env file is
// not an error.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilConfig is returned when a nil pointer is passed to Load.
	ErrNilConfig = errors.New("config: nil target")
	// ErrParseFailed wraps env parsing failures.
	ErrParseFailed = errors.New("config: failed to parse environment")
)

var (
	mu     sync.Mutex
	cached = make(map[string]any)

	dotenvOnce sync.Once
)

// Load populates the struct from environment variables using caarlos0/env
// tags. The first call in the process also loads the default .env file.
// Each distinct config type is parsed once; later calls return the cached
// value so every component sees identical configuration.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// The .env file is optional; variables may come from the real env.
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*v).String()

	mu.Lock()
	defer mu.Unlock()

	if stored, ok := cached[key]; ok {
		*v = stored.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParseFailed, key, err)
	}

	cached[key] = *v
	return nil
}

// Reset clears the config cache. Intended for tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cached = make(map[string]any)
}
