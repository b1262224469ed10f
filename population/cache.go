package population

import (
	"log/slog"
	"sync"
)

// Cache builds a population on first use and hands the same instance to
// every later caller. Concurrent first calls block until the single build
// finishes.
type Cache struct {
	habitats []Habitat
	seed     int64
	get      func() (*Population, error)
}

// NewCache returns a cache for the given habitat table and seed. Nothing is
// generated until Get is called.
func NewCache(habitats []Habitat, seed int64) *Cache {
	c := &Cache{
		habitats: append([]Habitat(nil), habitats...),
		seed:     seed,
	}
	c.get = sync.OnceValues(c.build)
	return c
}

func (c *Cache) build() (*Population, error) {
	pop, err := Generate(c.habitats, c.seed)
	if err != nil {
		return nil, err
	}
	slog.Info("population generated",
		"seed", c.seed,
		"habitats", len(c.habitats),
		"size", pop.Len(),
		"true_mean", pop.TrueMean(),
	)
	return pop, nil
}

// Get returns the cached population, generating it on the first call.
// A generation error is cached too.
func (c *Cache) Get() (*Population, error) {
	return c.get()
}

// MustGet is like Get but panics on error.
func (c *Cache) MustGet() *Population {
	pop, err := c.get()
	if err != nil {
		panic("population: " + err.Error())
	}
	return pop
}
