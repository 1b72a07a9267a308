package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the process configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	Environment string
	LogLevel    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// SchemaBaselinePath optionally points to a YAML file overriding the
	// compiled-in schema baseline.
	SchemaBaselinePath string

	Business Business
}

// Business carries the fixed business constants of the legacy accounting
// store. It is immutable and passed explicitly into services instead of
// living as package-level state.
type Business struct {
	// InvoicePrefix is the variable-symbol prefix of regular invoices.
	InvoicePrefix string
	// ProformaPrefix is the reserved variable-symbol prefix marking
	// proforma invoices.
	ProformaPrefix string

	// Payment insert constants.
	PaymentBankID   int
	PaymentCurrency string
	PaymentMethod   int
	PaymentLogUser  string

	// MaxCreditNoteValue is the most negative credit-note total the store
	// is expected to hold; used as the neutral floor in unpaid filters.
	MaxCreditNoteValue int

	// StockNumbers are the stock locations whose quantities count towards
	// a product's stock.
	StockNumbers []int
	// MovementKinds are the stock-movement kinds considered for company
	// activity and finance stats.
	MovementKinds []int

	// ChunkSize caps the number of identifiers per IN predicate.
	ChunkSize int

	// CompanyIDPrefix is the reserved prefix of auto-generated company
	// identifiers.
	CompanyIDPrefix string
	// UserNoteMarker is written to the small-note field of users created
	// through this layer.
	UserNoteMarker string

	DefaultDueDays    int
	DefaultPriceGroup int
}

// Load loads configuration from environment variables and an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	business := DefaultBusiness()
	business.ChunkSize = getenvInt("STORE_CHUNK_SIZE", business.ChunkSize)

	return Config{
		AppName:     getenv("APP_SERVICE", "mrpbridge"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "mrp"),
		DBUser:     getenv("DATABASE_USER", "mrp"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		SchemaBaselinePath: strings.TrimSpace(getenv("SCHEMA_BASELINE_PATH", "")),

		Business: business,
	}
}

// DefaultBusiness returns the business constants of the production store.
func DefaultBusiness() Business {
	return Business{
		InvoicePrefix:      "20",
		ProformaPrefix:     "920",
		PaymentBankID:      6101,
		PaymentCurrency:    "EUR",
		PaymentMethod:      1,
		PaymentLogUser:     "MRPDBA",
		MaxCreditNoteValue: -5000,
		StockNumbers:       []int{1, 2},
		MovementKinds:      []int{1, 2, 3},
		ChunkSize:          250,
		CompanyIDPrefix:    "A0",
		UserNoteMarker:     " - BENALEXPLUS INTRANET - ",
		DefaultDueDays:     14,
		DefaultPriceGroup:  1,
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
