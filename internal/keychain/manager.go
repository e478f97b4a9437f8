// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores database connection strings in the OS keychain or
// credential store, so that passwords never land in the config file.
//
// DSNs are kept per profile; the profile named "default" is used when none is
// given. Operations are safe for concurrent use.
package keychain

import (
	"errors"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlbridge"

// DefaultProfile is the profile used when none is named.
const DefaultProfile = "default"

// dsnPrefix namespaces DSN entries; the profile name follows it.
const dsnPrefix = "db_dsn:"

// ErrNotFound is returned when a profile has no stored DSN.
var ErrNotFound = errors.New("no DSN stored for profile")

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the platform credential store. Linux uses the Secret Service
// or KWallet, with pass as the last option; there is no file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

func dsnKey(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return dsnPrefix + profile
}

// SaveDSN stores the DSN of a profile.
func (m *Manager) SaveDSN(profile, dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(dsnKey(profile), dsn)
	}
	return m.ring.Set(keyring.Item{Key: dsnKey(profile), Data: []byte(dsn), Label: ServiceName + " " + profile})
}

// LoadDSN returns the DSN of a profile, or ErrNotFound.
func (m *Manager) LoadDSN(profile string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dsn string
	if m.backend != nil {
		v, err := m.backend.Get(dsnKey(profile))
		if err != nil {
			return "", err
		}
		dsn = v
	} else {
		it, err := m.ring.Get(dsnKey(profile))
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", err
		}
		dsn = string(it.Data)
	}
	if dsn == "" {
		return "", ErrNotFound
	}
	return dsn, nil
}

// ClearDSN removes the DSN of a profile. A missing entry is not an error.
func (m *Manager) ClearDSN(profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(dsnKey(profile))
	}
	if err := m.ring.Remove(dsnKey(profile)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Profiles lists the profiles with a stored DSN, where the backend can
// enumerate its entries. The macOS security command cannot.
func (m *Manager) Profiles() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		return nil, errors.New("listing profiles is not supported by the macOS security backend")
	}
	keys, err := m.ring.Keys()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if p, ok := strings.CutPrefix(k, dsnPrefix); ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}
