package admin

import "github.com/stockdesk/internal/provider"

// Handler 管理端全部接口，依赖统一从容器取
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
