package config

import (
	"errors"
	"fmt"
)

// Validate checks the fields every deployment needs before the app starts.
// Provider credentials are deliberately not checked here: having neither key
// is a classifier construction error with its own message.
func (c *Config) Validate() error {
	if c.Database.Primary.DSN == "" {
		return errors.New("database.primary.dsn is required (or set DATABASE_URL)")
	}

	if c.Redis.Address == "" {
		return errors.New("redis.address is required (or set REDIS_ADDR)")
	}

	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	return nil
}
