package main

import (
	"fmt"

	"visionaid/pkg/types"

	"github.com/kelseyhightower/envconfig"
)

func loadConfig(dev bool) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if !dev {
		if c.FirebaseDatabaseURL == "" {
			return nil, fmt.Errorf("set FIREBASE_DATABASE_URL")
		}
		if c.FirebaseProjectID == "" {
			return nil, fmt.Errorf("set FIREBASE_PROJECT_ID")
		}
		if c.FirebaseWebAPIKey == "" {
			return nil, fmt.Errorf("set FIREBASE_WEB_API_KEY")
		}
		if c.CookieHashKey == "" || c.CookieBlockKey == "" {
			return nil, fmt.Errorf("set COOKIE_HASH_KEY and COOKIE_BLOCK_KEY")
		}
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	return c, nil
}
