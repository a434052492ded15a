package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Bot      BotConfig
	Gateway  GatewayConfig
	PayHero  PayHeroConfig
	Payment  PaymentConfig
	Referral ReferralConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type BotConfig struct {
	// AdminNumber is the bare MSISDN of the single privileged identity.
	AdminNumber string
	// DeviceNumber is the number the bot is paired to; referral deep
	// links point at it.
	DeviceNumber string
	// HelpLine is shown in payment confirmations.
	HelpLine string
}

// GatewayConfig points at the WhatsApp HTTP gateway used for outbound
// sends and inbound webhooks.
type GatewayConfig struct {
	BaseURL string
	Token   string
}

type PayHeroConfig struct {
	APIURL      string
	ChannelID   int
	AuthToken   string // base64 basic-auth credential
	CallbackURL string
}

type PaymentConfig struct {
	// Info is the manual-payment instruction shown when the STK push
	// cannot be delivered. Admin-mutable at runtime.
	Info string
}

type ReferralConfig struct {
	// Bonus is the fixed commission per qualifying order, paid to the
	// direct referrer and again to the parent referrer if chained.
	Bonus         float64
	MinWithdrawal float64
	MaxWithdrawal float64
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 3000)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("ADMIN_NUMBER", "254740555065")
	viper.SetDefault("DEVICE_NUMBER", "254110562739")
	viper.SetDefault("HELP_LINE", "0701339573")
	viper.SetDefault("PAYMENT_INFO", "0759423842 (Tobias)")
	viper.SetDefault("PAYHERO_API_URL", "https://backend.payhero.co.ke/api/v2/payments")
	viper.SetDefault("PAYHERO_CHANNEL_ID", 1941)
	viper.SetDefault("PAYHERO_CALLBACK_URL", "https://example.com/callback.php")
	viper.SetDefault("REFERRAL_BONUS", 5)
	viper.SetDefault("MIN_WITHDRAWAL", 20)
	viper.SetDefault("MAX_WITHDRAWAL", 1000)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Bot: BotConfig{
			AdminNumber:  viper.GetString("ADMIN_NUMBER"),
			DeviceNumber: viper.GetString("DEVICE_NUMBER"),
			HelpLine:     viper.GetString("HELP_LINE"),
		},
		Gateway: GatewayConfig{
			BaseURL: viper.GetString("WA_GATEWAY_URL"),
			Token:   viper.GetString("WA_GATEWAY_TOKEN"),
		},
		PayHero: PayHeroConfig{
			APIURL:      viper.GetString("PAYHERO_API_URL"),
			ChannelID:   viper.GetInt("PAYHERO_CHANNEL_ID"),
			AuthToken:   viper.GetString("PAYHERO_AUTH"),
			CallbackURL: viper.GetString("PAYHERO_CALLBACK_URL"),
		},
		Payment: PaymentConfig{
			Info: viper.GetString("PAYMENT_INFO"),
		},
		Referral: ReferralConfig{
			Bonus:         viper.GetFloat64("REFERRAL_BONUS"),
			MinWithdrawal: viper.GetFloat64("MIN_WITHDRAWAL"),
			MaxWithdrawal: viper.GetFloat64("MAX_WITHDRAWAL"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
	}

	if cfg.Gateway.BaseURL == "" {
		log.Println("WARNING: WA_GATEWAY_URL is not set")
	}
	if cfg.PayHero.AuthToken == "" {
		log.Println("WARNING: PAYHERO_AUTH is not set")
	}

	return cfg, nil
}

// AdminID returns the admin's full WhatsApp identity.
func (b *BotConfig) AdminID() string {
	return b.AdminNumber + "@c.us"
}
