package firebaseauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joinby-app/qr-gateway/internal/credentials"
)

// identityToolkitAudience is the fixed audience Firebase expects on custom
// tokens.
const identityToolkitAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

const tokenTTL = time.Hour

// Minter issues Firebase custom tokens signed with the service-account key.
type Minter struct {
	email         string
	privateKeyPEM string
}

// NewMinter creates a Minter for the given service account.
func NewMinter(email, privateKeyPEM string) *Minter {
	return &Minter{
		email:         email,
		privateKeyPEM: privateKeyPEM,
	}
}

// CustomToken mints a custom token for uid, valid for one hour. The client
// exchanges it for a Firebase session via signInWithCustomToken.
func (m *Minter) CustomToken(uid string) (string, error) {
	if m.email == "" || m.privateKeyPEM == "" {
		return "", credentials.ErrMissingConfig
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(m.privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("%w: %v", credentials.ErrSigningFailed, err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.email,
		"sub": m.email,
		"aud": identityToolkitAudience,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"uid": uid,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", credentials.ErrSigningFailed, err)
	}

	return token, nil
}
