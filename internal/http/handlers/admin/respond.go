package admin

import (
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/i18n"
	"github.com/stockdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 带 request_id 的日志
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if id := c.GetString("request_id"); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// respondError 按请求语言翻译 key；err 只进日志，不回给前端
func respondError(c *gin.Context, code int, key string, err error) {
	respondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		requestLog(c).Errorw("handler_error", "code", code, "msg", msg, "error", err)
	}
	response.Error(c, code, msg)
}

// getAdminID 鉴权中间件写入的管理员 ID，缺失时回 401
func getAdminID(c *gin.Context) (uint, bool) {
	if id := c.GetUint("admin_id"); id != 0 {
		return id, true
	}
	respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
	return 0, false
}
