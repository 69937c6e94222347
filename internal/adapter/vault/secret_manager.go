package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
)

// SecretManager reads secrets from a KV v2 mount.
type SecretManager struct {
	client *api.Client
	mount  string
}

func NewSecretManager(address, token, mount string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	if mount == "" {
		mount = "secret"
	}
	return &SecretManager{client: client, mount: strings.Trim(mount, "/")}, nil
}

// GetDatabaseURL returns secret/data/database -> connection_string.
func (sm *SecretManager) GetDatabaseURL(ctx context.Context) (string, error) {
	return sm.readString(ctx, "database", "connection_string")
}

// GetOpenAIAPIKey returns secret/data/openai -> api_key.
func (sm *SecretManager) GetOpenAIAPIKey(ctx context.Context) (string, error) {
	return sm.readString(ctx, "openai", "api_key")
}

func (sm *SecretManager) readString(ctx context.Context, path, field string) (string, error) {
	full := sm.mount + "/data/" + path
	secret, err := sm.client.Logical().ReadWithContext(ctx, full)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", full, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault: secret %s not found", full)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: secret %s has no data", full)
	}
	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("vault: secret %s has no %q", full, field)
	}
	return value, nil
}
