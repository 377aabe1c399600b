package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/divreminder/divreminder/domain"
)

var _ domain.ApiKeyRepository = (*Repository)(nil)

type dbApiKey struct {
	Provider string `db:"provider"`
	Key      string `db:"key"`
}

// UpsertApiKey implements the domain.ApiKeyRepository interface.
// It inserts the key of a provider or replaces the stored one.
func (repo *Repository) UpsertApiKey(apiKey *domain.ApiKey) error {
	query := `INSERT INTO api_keys (provider, key) VALUES (?, ?)
	          ON CONFLICT(provider) DO UPDATE SET key = excluded.key`

	_, err := repo.dbConn.Exec(query, apiKey.Provider, apiKey.Key)
	if err != nil {
		return fmt.Errorf("storing api key for %s: %w", apiKey.Provider, err)
	}
	return nil
}

// GetApiKey implements the domain.ApiKeyRepository interface.
func (repo *Repository) GetApiKey(provider string) (*domain.ApiKey, error) {
	var k dbApiKey
	err := repo.dbConn.Get(&k, `SELECT provider, key FROM api_keys WHERE provider = ?`, provider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting api key for %s: %w", provider, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting api key for %s: %w", provider, err)
	}
	return &domain.ApiKey{Provider: k.Provider, Key: k.Key}, nil
}

// GetApiKeys implements the domain.ApiKeyRepository interface.
// The stored OpenAI model is not a key and is left out.
func (repo *Repository) GetApiKeys() ([]*domain.ApiKey, error) {
	var keys []*dbApiKey
	err := repo.dbConn.Select(&keys, `SELECT provider, key FROM api_keys WHERE provider != ? ORDER BY provider`, domain.OpenAIModelProvider)
	if err != nil {
		return nil, fmt.Errorf("getting api keys: %w", err)
	}

	apiKeys := make([]*domain.ApiKey, len(keys))
	for i, k := range keys {
		apiKeys[i] = &domain.ApiKey{Provider: k.Provider, Key: k.Key}
	}
	return apiKeys, nil
}

// DeleteApiKey implements the domain.ApiKeyRepository interface.
func (repo *Repository) DeleteApiKey(provider string) error {
	result, err := repo.dbConn.Exec(`DELETE FROM api_keys WHERE provider = ?`, provider)
	if err != nil {
		return fmt.Errorf("deleting api key for %s: %w", provider, err)
	}
	return expectRows(result, "api key", provider)
}

// GetOpenAIModel implements the domain.ApiKeyRepository interface.
// It falls back to domain.DefaultOpenAIModel when no model is stored.
func (repo *Repository) GetOpenAIModel() (string, error) {
	k, err := repo.GetApiKey(domain.OpenAIModelProvider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultOpenAIModel, nil
		}
		return "", err
	}
	if strings.TrimSpace(k.Key) == "" {
		return domain.DefaultOpenAIModel, nil
	}
	return k.Key, nil
}

// SetOpenAIModel implements the domain.ApiKeyRepository interface.
func (repo *Repository) SetOpenAIModel(model string) error {
	return repo.UpsertApiKey(&domain.ApiKey{Provider: domain.OpenAIModelProvider, Key: model})
}
