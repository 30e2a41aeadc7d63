package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the values that would otherwise fail late at runtime.
// Missing messaging credentials are not an error here: the webhook reports
// them per request.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.App,
		validation.Field(&c.App.WebhookRateLimit, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In("sqlite", "postgres")),
		validation.Field(&c.Database.Name, validation.Required),
		validation.Field(&c.Database.ValkeyAddress, validation.When(c.Database.ValkeyEnabled, validation.Required)),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := validation.ValidateStruct(&c.AI,
		validation.Field(&c.AI.Provider, validation.Required, validation.In("openai", "gemini")),
		validation.Field(&c.AI.RunPollInterval, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.AI.RunTimeout, validation.Required),
	); err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	if err := validation.ValidateStruct(&c.Pipeline,
		validation.Field(&c.Pipeline.ReminderEvery, validation.Min(1)),
		validation.Field(&c.Pipeline.HistoryTurns, validation.Min(0), validation.Max(20)),
	); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
