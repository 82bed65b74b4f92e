package config

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. Values are read once at startup
// and are read-only afterwards.
type Config struct {
	ServerAddress string
	GRPCAddress   string
	BaseURL       string

	FirebaseProjectID  string
	ServiceAccountMail string
	ServiceAccountKey  string
	StaticAccessToken  string

	FirestoreBaseURL string
	TokenEndpoint    string

	// CanonicalCollection is the collection the redirect path reads.
	// Collections lists every candidate the broad search probes, in order;
	// the canonical collection comes first.
	CanonicalCollection string
	Collections         []string

	DatabaseDSN      string
	KakaoUserInfoURL string
}

const (
	defaultFirestoreBaseURL = "https://firestore.googleapis.com/v1"
	defaultTokenEndpoint    = "https://oauth2.googleapis.com/token"
	defaultKakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"
	defaultCollections      = "qrcodes,qrCodes,qrcode,qrcods"
)

func NewConfig() *Config {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress:       ":8080",
		BaseURL:             "http://localhost:8080",
		FirestoreBaseURL:    defaultFirestoreBaseURL,
		TokenEndpoint:       defaultTokenEndpoint,
		KakaoUserInfoURL:    defaultKakaoUserInfoURL,
		CanonicalCollection: "qrcodes",
	}

	collections := defaultCollections

	flag.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "HTTP server address (e.g. localhost:8888)")
	flag.StringVar(&cfg.GRPCAddress, "g", cfg.GRPCAddress, "gRPC server address; gRPC is disabled when empty")
	flag.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "Public base URL of the gateway")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "Postgres DSN for the scan log; scan logging is disabled when empty")

	flag.Parse()

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.ServerAddress = v
	}
	if v := os.Getenv("GRPC_ADDRESS"); v != "" {
		cfg.GRPCAddress = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("FIREBASE_PROJECT_ID"); v != "" {
		cfg.FirebaseProjectID = v
	}
	if v := os.Getenv("FIREBASE_CLIENT_EMAIL"); v != "" {
		cfg.ServiceAccountMail = v
	}
	if v := os.Getenv("FIREBASE_PRIVATE_KEY"); v != "" {
		cfg.ServiceAccountKey = unescapeKey(v)
	}
	if v := os.Getenv("FIRESTORE_ACCESS_TOKEN"); v != "" {
		cfg.StaticAccessToken = v
	}
	if v := os.Getenv("FIRESTORE_BASE_URL"); v != "" {
		cfg.FirestoreBaseURL = v
	}
	if v := os.Getenv("OAUTH_TOKEN_URL"); v != "" {
		cfg.TokenEndpoint = v
	}
	if v := os.Getenv("QR_COLLECTION"); v != "" {
		cfg.CanonicalCollection = v
	}
	if v := os.Getenv("QR_COLLECTIONS"); v != "" {
		collections = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("KAKAO_USERINFO_URL"); v != "" {
		cfg.KakaoUserInfoURL = v
	}

	cfg.Collections = splitCollections(collections)

	return cfg
}

// unescapeKey restores real newlines in a PEM key delivered through an
// environment variable with literal "\n" sequences.
func unescapeKey(key string) string {
	key = strings.Trim(key, `"`)
	return strings.ReplaceAll(key, `\n`, "\n")
}

func splitCollections(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
