// Package secrets resolves API credentials. The OS keychain is preferred;
// environment variables (including a .env file loaded at startup) are the
// fallback for headless hosts without a keyring daemon.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "aujobs-engine"

	adzunaAppIDAccount  = "adzuna:app_id"
	adzunaAppKeyAccount = "adzuna:app_key"
)

// AdzunaCredentials returns the app_id/app_key pair from the keychain, then
// from ADZUNA_APP_ID/ADZUNA_APP_KEY. Both halves must resolve.
func AdzunaCredentials() (appID, appKey string, err error) {
	appID = lookup(adzunaAppIDAccount, "ADZUNA_APP_ID")
	appKey = lookup(adzunaAppKeyAccount, "ADZUNA_APP_KEY")
	if appID == "" || appKey == "" {
		return "", "", errors.New("adzuna credentials not found (set them in keychain or via env)")
	}
	return appID, appKey, nil
}

// SetAdzunaCredentials stores the pair in the OS keychain.
func SetAdzunaCredentials(appID, appKey string) error {
	if strings.TrimSpace(appID) == "" || strings.TrimSpace(appKey) == "" {
		return errors.New("app_id and app_key must be non-empty")
	}
	if err := keyring.Set(KeyringService, adzunaAppIDAccount, appID); err != nil {
		return err
	}
	return keyring.Set(KeyringService, adzunaAppKeyAccount, appKey)
}

// DeleteAdzunaCredentials removes the pair from the OS keychain.
func DeleteAdzunaCredentials() error {
	if err := keyring.Delete(KeyringService, adzunaAppIDAccount); err != nil {
		return err
	}
	return keyring.Delete(KeyringService, adzunaAppKeyAccount)
}

func lookup(account, envVar string) string {
	if v, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(os.Getenv(envVar))
}
