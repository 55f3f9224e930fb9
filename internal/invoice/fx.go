package invoice

import (
	"github.com/smallbiznis/promptinvoice/internal/invoice/render"
	"github.com/smallbiznis/promptinvoice/internal/invoice/repository"
	"github.com/smallbiznis/promptinvoice/internal/invoice/service"
	"github.com/smallbiznis/promptinvoice/internal/tax"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	tax.Module,
	fx.Provide(render.NewRenderer),
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
