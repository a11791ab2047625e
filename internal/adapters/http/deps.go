package http

import (
	natsadapter "github.com/samirrijal/circlehole/internal/adapters/nats"
	"github.com/samirrijal/circlehole/internal/adapters/valkey"
	"github.com/samirrijal/circlehole/internal/core/usecases"
	"github.com/samirrijal/circlehole/internal/pkg/config"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Polygons *usecases.PolygonService
	Circle   config.CircleConfig // request defaults and limits
	Events   *natsadapter.Publisher
	Cache    *valkey.Cache
}
