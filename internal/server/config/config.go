package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
)

// CallbackPath is the OAuth callback route, appended to the public URL to
// form the redirect URI registered with the provider.
const CallbackPath = "/api/melhorenvio/callback"

type Config struct {
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	MongoURL    string   `env:"MONGO_URL"`
	DBName      string   `env:"DB_NAME" envDefault:"moldz3d"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	MelhorEnvio MelhorEnvio
}

// MelhorEnvio holds the provider credentials and the fixed sender (store)
// address used on every outbound shipment.
type MelhorEnvio struct {
	Sandbox      bool   `env:"MELHOR_ENVIO_SANDBOX" envDefault:"true"`
	ClientID     string `env:"MELHOR_ENVIO_CLIENT_ID"`
	ClientSecret string `env:"MELHOR_ENVIO_CLIENT_SECRET"`
	PublicURL    string `env:"MELHOR_ENVIO_PUBLIC_URL"`
	FromCEP      string `env:"MELHOR_ENVIO_FROM_CEP"`
	UserAgent    string `env:"MELHOR_ENVIO_USER_AGENT" envDefault:"Moldz3D (contato@exemplo.com)"`
	OAuthScope   string `env:"MELHOR_ENVIO_OAUTH_SCOPE"`

	FromName       string `env:"MELHOR_ENVIO_FROM_NAME"`
	FromPhone      string `env:"MELHOR_ENVIO_FROM_PHONE"`
	FromEmail      string `env:"MELHOR_ENVIO_FROM_EMAIL"`
	FromAddress    string `env:"MELHOR_ENVIO_FROM_ADDRESS"`
	FromNumber     string `env:"MELHOR_ENVIO_FROM_NUMBER"`
	FromComplement string `env:"MELHOR_ENVIO_FROM_COMPLEMENT"`
	FromDistrict   string `env:"MELHOR_ENVIO_FROM_DISTRICT"`
	FromCity       string `env:"MELHOR_ENVIO_FROM_CITY"`
	FromState      string `env:"MELHOR_ENVIO_FROM_STATE"`
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists. MONGO_URL is required: the store handle is
// constructed at startup, not on first use.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.MelhorEnvio.PublicURL = strings.TrimRight(cfg.MelhorEnvio.PublicURL, "/")
	if cfg.MongoURL == "" {
		return Config{}, errors.New("MONGO_URL is not set; create a .env file or set it in the environment")
	}
	return cfg, nil
}

// BaseURL selects the provider environment from the sandbox flag.
func (m MelhorEnvio) BaseURL() string {
	if m.Sandbox {
		return melhorenvio.SandboxBaseURL
	}
	return melhorenvio.ProductionBaseURL
}

// RedirectURI is the exact callback URL used on both legs of the
// authorization-code flow.
func (m MelhorEnvio) RedirectURI() string {
	return m.PublicURL + CallbackPath
}
