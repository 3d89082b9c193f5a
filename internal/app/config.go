package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vk/promptgrid/internal/snapshot"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string `validate:"required"` // .hcl file or directory, or a .json/.msgpack snapshot

	LogFormat       string `validate:"oneof=text json pretty"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`

	Debounce     time.Duration `validate:"gte=0s"`
	AsyncTimeout time.Duration `validate:"gte=0s"`

	// Triggers lists lazy nodes to fire once after the graph first settles.
	Triggers []string `validate:"dive,required"`
	// OutputPath is where the final snapshot is written, if set.
	OutputPath string `validate:"omitempty,snapshot_path"`

	BroadcastURL  string `validate:"omitempty,url"`
	OpenAIBaseURL string `validate:"omitempty,url"`
	OpenAIAPIKey  string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// snapshot_path accepts exactly the extensions the snapshot codec reads.
	_ = v.RegisterValidation("snapshot_path", func(fl validator.FieldLevel) bool {
		_, err := snapshot.FormatFromPath(fl.Field().String())
		return err == nil
	})
	return v
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
