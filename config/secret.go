package config

import (
	"log"
	"os"
	"strings"
	"sync"
)

var (
	jwtSecret     []byte
	jwtSecretOnce sync.Once
)

// GetJwtSecret returns the process-wide token signing key.
// The key comes from API_SECRET. In production a missing key is a fatal
// misconfiguration; anywhere else a dev-only fallback keeps local runs
// and tests working without a .env file.
func GetJwtSecret() []byte {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("API_SECRET"))
		if secret == "" {
			if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
				log.Fatal("API_SECRET must be set when GO_ENV=production")
			}
			secret = "erp-backend-dev-secret"
		}
		jwtSecret = []byte(secret)
	})
	return jwtSecret
}
