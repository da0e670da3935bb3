// internal/infra/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Store variants. The active one is chosen at construction time (DI), never
// via ambient globals.
const (
	VariantLocal     = "local"     // device-local JSON file (anonymous buyer)
	VariantRemote    = "remote"    // REST cart resource (signed-in buyer)
	VariantFirestore = "firestore" // direct Firestore (kiosk inside the shop's GCP project)
)

// defaultAPIBaseURL is the per-deployment cart service URL; builds override it
// with CART_API_BASE_URL.
const defaultAPIBaseURL = "https://aromelle-api.asia-northeast1.run.app"

// Config holds the environment configuration for the cart client.
type Config struct {
	Variant string

	// local variant
	CartFile string

	// remote variant
	APIBaseURL string
	TokenFile  string
	// APITokenSecret, when set, is a Secret Manager version resource the
	// bearer token is resolved from (kiosk service accounts).
	APITokenSecret string

	// firestore variant
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// OwnerID keys the cart doc in the firestore variant (buyer uid or
	// kiosk device id).
	OwnerID string
}

// Load reads the environment and returns the Config.
func Load() *Config {
	cfg := &Config{
		Variant: strings.ToLower(getenvDefault("CART_VARIANT", VariantLocal)),

		CartFile: getenvDefault("CART_FILE", defaultCartFile()),

		APIBaseURL:     getenvDefault("CART_API_BASE_URL", defaultAPIBaseURL),
		TokenFile:      getenvDefault("CART_TOKEN_FILE", defaultTokenFile()),
		APITokenSecret: os.Getenv("CART_API_TOKEN_SECRET"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", os.Getenv("GCP_PROJECT_ID")),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		OwnerID: os.Getenv("CART_OWNER_ID"),
	}

	return cfg
}

// defaultCartFile is the localStorage analog: one slot per OS user.
func defaultCartFile() string {
	return filepath.Join(configDir(), "cart.json")
}

func defaultTokenFile() string {
	return filepath.Join(configDir(), "token")
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "aromelle")
	}
	return ".aromelle"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
