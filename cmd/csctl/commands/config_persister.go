package commands

import (
	"sync"
	"time"
)

// ConfigPersister implements csapi.TokenPersister on top of the CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken stores the token and its expiry. A zero expiresAt clears the stored expiry.
func (p *ConfigPersister) SaveToken(token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	config.Token = token
	config.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return saveConfigStruct(config)
}
