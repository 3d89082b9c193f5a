package app

import (
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/modules/function"
	iomod "github.com/vk/promptgrid/modules/io"
	"github.com/vk/promptgrid/modules/openai"
	"github.com/vk/promptgrid/modules/prompt"
)

// coreModules is the definitive list of all node modules compiled into the
// promptgrid binary.
func coreModules(cfg *Config) []registry.Module {
	return []registry.Module{
		&iomod.Module{},
		&prompt.Module{},
		&openai.Module{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL},
		&function.Module{},
	}
}
