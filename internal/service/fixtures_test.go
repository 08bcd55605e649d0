package service

import (
	"context"
	"time"

	"fleetwatch/internal/repository"
)

// fixedClock pins Now for deterministic date windows.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newSeededRepos(now time.Time) *repository.Repos {
	repos := repository.NewRepos()
	repository.Seed(context.Background(), repos, now)
	return repos
}
