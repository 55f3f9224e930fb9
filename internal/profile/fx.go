package profile

import (
	"github.com/smallbiznis/promptinvoice/internal/profile/repository"
	"github.com/smallbiznis/promptinvoice/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
