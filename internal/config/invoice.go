package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// InvoiceSettings are the tunable invoice defaults read from invoice.yml.
// Amounts are always INR.
type InvoiceSettings struct {
	DefaultTaxRate float64 `mapstructure:"defaultTaxRate"`
	NumberTemplate string  `mapstructure:"numberTemplate"`
	DueDays        int     `mapstructure:"dueDays"`
}

func DefaultInvoiceSettings() InvoiceSettings {
	return InvoiceSettings{
		DefaultTaxRate: 18,
		NumberTemplate: "INV-{YYYY}{MM}{DD}-{SEQ4}",
		DueDays:        30,
	}
}

// DefaultRate returns the fallback GST rate as a decimal percentage.
func (s InvoiceSettings) DefaultRate() decimal.Decimal {
	return decimal.NewFromFloat(s.DefaultTaxRate)
}

type InvoiceSettingsHolder struct {
	current atomic.Value // holds InvoiceSettings
}

// NewStaticInvoiceSettings returns a holder that never reloads.
func NewStaticInvoiceSettings(settings InvoiceSettings) *InvoiceSettingsHolder {
	holder := &InvoiceSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func NewInvoiceSettingsHolder() (*InvoiceSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("invoice")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/promptinvoice")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PROMPTINVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoiceSettings()
	v.SetDefault("invoice.defaultTaxRate", defaults.DefaultTaxRate)
	v.SetDefault("invoice.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoice.dueDays", defaults.DueDays)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	var cfg InvoiceSettings
	if err := v.UnmarshalKey("invoice", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoiceSettings(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticInvoiceSettings(cfg)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated InvoiceSettings
			if err := v.UnmarshalKey("invoice", &updated); err != nil {
				log.Printf("[invoice-config] reload failed: %v", err)
				return
			}
			if err := validateInvoiceSettings(updated); err != nil {
				log.Printf("[invoice-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[invoice-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *InvoiceSettingsHolder) Get() InvoiceSettings {
	return h.current.Load().(InvoiceSettings)
}

func validateInvoiceSettings(cfg InvoiceSettings) error {
	if cfg.DefaultTaxRate < 0 {
		return errors.New("invoice.defaultTaxRate cannot be negative")
	}
	if strings.TrimSpace(cfg.NumberTemplate) == "" {
		return errors.New("invoice.numberTemplate cannot be empty")
	}
	if cfg.DueDays < 0 {
		return errors.New("invoice.dueDays cannot be negative")
	}
	return nil
}
