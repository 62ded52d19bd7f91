package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/i18n"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// builtinSuperAdmin 该账号始终是超级管理员且不可删除
const builtinSuperAdmin = "admin"

const (
	adminUsernameMinLen = 3
	adminNameMaxLen     = 64
)

var errAdminUsernameInvalid = errors.New("username must be 3-64 characters without whitespace")

type adminView struct {
	*models.Admin
	Roles []string `json:"roles"`
}

type createAdminRequest struct {
	Username    string   `json:"username" binding:"required"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password" binding:"required"`
	IsSuper     bool     `json:"is_super"`
	Roles       []string `json:"roles"`
}

type updateAdminRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Password    *string `json:"password"`
	IsSuper     *bool   `json:"is_super"`
}

// ListAdmins 管理员列表，附带各自的角色
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	views := make([]adminView, 0, len(admins))
	for i := range admins {
		roles, err := h.AuthzService.AdminRoles(admins[i].ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		views = append(views, adminView{Admin: &admins[i], Roles: roles})
	}
	response.Success(c, views)
}

// CreateAdmin 新建管理员，可同时分配角色
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	username, err := cleanAdminUsername(req.Username)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
		return
	}
	if !h.usernameAvailable(c, username, 0, "error.admin_create_failed") {
		return
	}
	hash, ok := h.hashAdminPassword(c, req.Password, "error.admin_create_failed")
	if !ok {
		return
	}

	admin := &models.Admin{
		Username:     username,
		DisplayName:  adminDisplayName(req.DisplayName, username),
		PasswordHash: hash,
		IsSuper:      req.IsSuper || strings.EqualFold(username, builtinSuperAdmin),
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		return
	}
	roles, err := h.AuthzService.AssignRoles(admin.ID, req.Roles)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	if err := cache.StoreAuthSnapshot(c.Request.Context(), admin); err != nil {
		requestLog(c).Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}

	h.audit(c, service.AccessAuditEntry{
		Event:  service.AuditAdminCreate,
		Target: admin,
		Detail: models.JSON{"is_super": admin.IsSuper, "roles": roles},
	})
	response.Success(c, adminView{Admin: admin, Roles: roles})
}

// UpdateAdmin 修改账号、显示名、超管标记或重置密码；重置密码会吊销已签发的 Token
func (h *Handler) UpdateAdmin(c *gin.Context) {
	admin, ok := h.loadAdminParam(c, "error.admin_update_failed")
	if !ok {
		return
	}
	var req updateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var changed []string
	if req.Username != nil {
		username, err := cleanAdminUsername(*req.Username)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
			return
		}
		if username != admin.Username {
			if !h.usernameAvailable(c, username, admin.ID, "error.admin_update_failed") {
				return
			}
			admin.Username = username
			changed = append(changed, "username")
		}
	}
	if req.DisplayName != nil {
		if name := adminDisplayName(*req.DisplayName, admin.Username); name != admin.DisplayName {
			admin.DisplayName = name
			changed = append(changed, "display_name")
		}
	}
	if req.IsSuper != nil {
		isSuper := *req.IsSuper || strings.EqualFold(admin.Username, builtinSuperAdmin)
		if isSuper != admin.IsSuper {
			admin.IsSuper = isSuper
			changed = append(changed, "is_super")
		}
	}
	if req.Password != nil {
		hash, ok := h.hashAdminPassword(c, *req.Password, "error.admin_update_failed")
		if !ok {
			return
		}
		now := time.Now()
		admin.PasswordHash = hash
		admin.TokenVersion++
		admin.TokenInvalidBefore = &now
		changed = append(changed, "password")
	}
	if len(changed) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_update_failed", err)
		return
	}
	if err := cache.StoreAuthSnapshot(c.Request.Context(), admin); err != nil {
		requestLog(c).Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
	if c.GetUint("admin_id") == admin.ID {
		c.Set("admin_is_super", admin.IsSuper)
	}

	h.audit(c, service.AccessAuditEntry{
		Event:  service.AuditAdminUpdate,
		Target: admin,
		Detail: models.JSON{"changed": changed, "is_super": admin.IsSuper},
	})
	response.Success(c, admin)
}

// DeleteAdmin 删除管理员；不能删自己、内置超管或最后一个管理员
func (h *Handler) DeleteAdmin(c *gin.Context) {
	admin, ok := h.loadAdminParam(c, "error.admin_delete_failed")
	if !ok {
		return
	}
	switch {
	case c.GetUint("admin_id") == admin.ID:
		respondError(c, response.CodeBadRequest, "error.admin_delete_self_forbidden", nil)
		return
	case strings.EqualFold(admin.Username, builtinSuperAdmin):
		respondError(c, response.CodeBadRequest, "error.admin_delete_protected", nil)
		return
	}
	count, err := h.AdminRepo.Count()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if count <= 1 {
		respondError(c, response.CodeBadRequest, "error.admin_delete_last_forbidden", nil)
		return
	}

	if err := h.AuthzService.ClearAdmin(admin.ID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(admin.ID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if err := cache.ForgetAuthSnapshot(c.Request.Context(), admin.ID); err != nil {
		requestLog(c).Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}

	h.audit(c, service.AccessAuditEntry{Event: service.AuditAdminDelete, Target: admin})
	response.Success(c, nil)
}

func (h *Handler) usernameAvailable(c *gin.Context, username string, selfID uint, failKey string) bool {
	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return false
	}
	if existing != nil && existing.ID != selfID {
		respondError(c, response.CodeBadRequest, "error.admin_username_exists", nil)
		return false
	}
	return true
}

func (h *Handler) hashAdminPassword(c *gin.Context, raw, failKey string) (string, bool) {
	password := strings.TrimSpace(raw)
	if password == "" {
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return "", false
	}
	if err := h.AuthService.ValidatePassword(password); err != nil {
		if !respondAdminPasswordPolicyError(c, err) {
			respondError(c, response.CodeBadRequest, "error.password_weak", err)
		}
		return "", false
	}
	hash, err := h.AuthService.HashPassword(password)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return "", false
	}
	return hash, true
}

func cleanAdminUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	n := len([]rune(username))
	if n < adminUsernameMinLen || n > adminNameMaxLen || strings.ContainsAny(username, " \t\r\n") {
		return "", errAdminUsernameInvalid
	}
	return username, nil
}

// adminDisplayName 显示名称为空时回退到登录账号，超长截断
func adminDisplayName(raw, username string) string {
	name := []rune(strings.TrimSpace(raw))
	if len(name) == 0 {
		return username
	}
	if len(name) > adminNameMaxLen {
		name = name[:adminNameMaxLen]
	}
	return string(name)
}

// respondAdminPasswordPolicyError 按未满足的具体规则返回本地化提示
func respondAdminPasswordPolicyError(c *gin.Context, err error) bool {
	var perr *service.PasswordPolicyError
	if !errors.As(err, &perr) {
		return false
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key, perr.Args...)
	respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
	return true
}
