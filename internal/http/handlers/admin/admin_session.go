package admin

import (
	"strings"
	"time"

	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
)

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaConfigInvalid, code: response.CodeInternal, key: "error.captcha_config_invalid"},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.admin_login_invalid"},
}

var adminMissingRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.admin_not_found"},
}

var passwordChangeRules = concatMappedHandlerErrors([]mappedHandlerError{
	{target: service.ErrInvalidPassword, code: response.CodeBadRequest, key: "error.password_old_invalid"},
}, adminMissingRules)

type captchaAnswer struct {
	ID   string `json:"captcha_id"`
	Code string `json:"captcha_code"`
}

type loginRequest struct {
	Username string        `json:"username" binding:"required"`
	Password string        `json:"password" binding:"required"`
	Captcha  captchaAnswer `json:"captcha_payload"`
}

type sessionView struct {
	Token     string               `json:"token"`
	User      service.AdminProfile `json:"user"`
	ExpiresAt string               `json:"expires_at"`
}

type passwordChangeRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// AdminLogin 校验验证码后签发 JWT
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if h.CaptchaService != nil {
		err := h.CaptchaService.Verify(service.CaptchaVerifyPayload{
			CaptchaID:   strings.TrimSpace(req.Captcha.ID),
			CaptchaCode: strings.TrimSpace(req.Captcha.Code),
		})
		if err != nil {
			respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.captcha_verify_failed")
			return
		}
	}

	session, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		requestLog(c).Infow("admin_login_rejected", "username", req.Username, "client_ip", c.ClientIP())
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.login_failed")
		return
	}
	requestLog(c).Infow("admin_login_success", "admin_id", session.Admin.ID, "username", session.Admin.Username)
	response.Success(c, sessionView{
		Token:     session.Token,
		User:      service.NewAdminProfile(session.Admin),
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

// GetAdminCaptcha 登录图片验证码；未启用时返回 enabled=false
func (h *Handler) GetAdminCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		response.Success(c, service.CaptchaImageChallenge{})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		return
	}
	response.Success(c, challenge)
}

func (h *Handler) GetAdminProfile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	profile, err := h.AuthService.GetProfile(adminID)
	if err != nil {
		respondWithMappedError(c, err, adminMissingRules, response.CodeInternal, "error.admin_fetch_failed")
		return
	}
	response.Success(c, profile)
}

// UpdateAdminPassword 修改本人密码，成功后旧 Token 失效
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req passwordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	err := h.AuthService.ChangePassword(c.Request.Context(), adminID, req.OldPassword, req.NewPassword)
	if err != nil {
		if respondAdminPasswordPolicyError(c, err) {
			return
		}
		respondWithMappedError(c, err, passwordChangeRules, response.CodeInternal, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_password_changed", "admin_id", adminID)
	response.Success(c, nil)
}
