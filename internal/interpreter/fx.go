package interpreter

import (
	"github.com/smallbiznis/promptinvoice/internal/config"
	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	"github.com/smallbiznis/promptinvoice/internal/interpreter/gemini"
	"github.com/smallbiznis/promptinvoice/internal/interpreter/openai"
	"github.com/smallbiznis/promptinvoice/internal/interpreter/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("interpreter",
	fx.Provide(NewClient),
	fx.Provide(service.New),
)

// NewClient selects the language model provider named by LLM_PROVIDER.
func NewClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (interpreterdomain.Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		log.Info("interpreter provider selected", zap.String("provider", config.ProviderGemini), zap.String("model", cfg.LLM.GeminiModel))
		client, err := gemini.NewClient(lc, cfg.LLM)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		log.Info("interpreter provider selected", zap.String("provider", config.ProviderOpenAI), zap.String("model", cfg.LLM.OpenAIModel))
		return openai.NewClient(cfg.LLM), nil
	}
}
