package auth

import (
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	"github.com/smallbiznis/promptinvoice/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(
		fx.Annotate(service.NewJWTVerifier, fx.As(new(authdomain.Verifier))),
	),
)
