package actions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/roach88/authflow/internal/config"
)

// SecretHash computes the provider's SECRET_HASH for username:
// base64(HMAC-SHA256(client secret, username + client id)). Public clients
// have no secret and send no hash.
func SecretHash(p config.ProviderConfig, username string) string {
	if p.ClientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(p.ClientSecret))
	mac.Write([]byte(username + p.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
