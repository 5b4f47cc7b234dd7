package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the application reads from the environment.
// Values come from DRILLBOOKS_* variables, with a .env file loaded first if
// one exists next to the binary.
type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL" default:"./drillbooks.db"`
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite3"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	InvoicePrefix  string `envconfig:"INVOICE_PREFIX" default:"INV"`
	DefaultTaxRate string `envconfig:"DEFAULT_TAX_RATE" default:"0"`

	// Company details rendered on invoice PDFs.
	CompanyName          string `envconfig:"COMPANY_NAME" default:"Drillbooks Drilling Co."`
	CompanyAddress       string `envconfig:"COMPANY_ADDRESS" default:""`
	BillingBank          string `envconfig:"BILLING_BANK" default:""`
	BillingAccountName   string `envconfig:"BILLING_ACCOUNT_NAME" default:""`
	BillingAccountNumber string `envconfig:"BILLING_ACCOUNT_NUMBER" default:""`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("drillbooks", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Dump() {
	fmt.Printf("Database URL: %s\n", c.DatabaseURL)
	fmt.Printf("Database Driver: %s\n", c.DatabaseDriver)
	fmt.Printf("Invoice Prefix: %s\n", c.InvoicePrefix)
}
