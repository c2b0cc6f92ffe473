package auth

import (
	"os"
)

// EnvAPIKey is the environment variable read by EnvironmentStore
const EnvAPIKey = "THREADGRAB_API_KEY"

// EnvironmentStore implements CredentialStore over THREADGRAB_API_KEY.
// It is read-only and serves every profile.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Name implements CredentialStore
func (e *EnvironmentStore) Name() string { return "environment" }

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Credential) error {
	return ErrStoreUnavailable
}

// Retrieve gets the key from the environment
func (e *EnvironmentStore) Retrieve(profile string) (*Credential, error) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return nil, ErrCredentialsNotFound
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &Credential{Profile: profile, APIKey: key}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment carries a key
func (e *EnvironmentStore) Exists(string) bool {
	return os.Getenv(EnvAPIKey) != ""
}
