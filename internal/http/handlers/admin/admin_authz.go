package admin

import (
	"net/url"

	"github.com/stockdesk/internal/authz"
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
)

var authzErrorRules = []mappedHandlerError{
	{target: authz.ErrRoleRequired, code: response.CodeBadRequest, key: "error.role_required"},
	{target: authz.ErrRoleReserved, code: response.CodeBadRequest, key: "error.role_reserved"},
	{target: authz.ErrRoleBuiltin, code: response.CodeBadRequest, key: "error.role_builtin"},
	{target: authz.ErrRoleNotFound, code: response.CodeNotFound, key: "error.role_not_found"},
	{target: authz.ErrPolicyInvalid, code: response.CodeBadRequest, key: "error.policy_invalid"},
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

type policyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Method string `json:"method" binding:"required"`
}

type roleAssignmentRequest struct {
	Roles []string `json:"roles"`
}

// audit 补齐操作人与请求 ID 后写审计日志，失败只记日志
func (h *Handler) audit(c *gin.Context, entry service.AccessAuditEntry) {
	entry.OperatorID = c.GetUint("admin_id")
	entry.OperatorName = c.GetString("username")
	entry.RequestID = c.GetString("request_id")
	if err := h.AccessAuditService.Record(entry); err != nil {
		requestLog(c).Warnw("access_audit_record_failed", "event", entry.Event, "error", err)
		return
	}
	requestLog(c).Infow("access_audit_recorded",
		"event", entry.Event,
		"operator_id", entry.OperatorID,
		"role", entry.Role,
	)
}

// AuthzMe 当前管理员的角色与生效策略
func (h *Handler) AuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.AdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.EffectivePolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": c.GetBool("admin_is_super"),
		"roles":    roles,
		"policies": policies,
	})
}

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.Roles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateRole 新建自定义角色
func (h *Handler) CreateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.CreateRole(req.Role)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	h.audit(c, service.AccessAuditEntry{Event: service.AuditRoleCreate, Role: role})
	response.Success(c, gin.H{"role": role})
}

func roleParam(c *gin.Context) (string, bool) {
	role, err := url.PathUnescape(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_required", err)
		return "", false
	}
	role, err = authz.RoleName(role)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeBadRequest, "error.role_required")
		return "", false
	}
	return role, true
}

// DeleteRole 删除自定义角色
func (h *Handler) DeleteRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	h.audit(c, service.AccessAuditEntry{Event: service.AuditRoleDelete, Role: role})
	response.Success(c, nil)
}

// ListRolePolicies 角色的策略
func (h *Handler) ListRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.RolePolicies(role)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_fetch_failed")
		return
	}
	response.Success(c, policies)
}

// GrantPolicy 授予角色一条路由策略
func (h *Handler) GrantPolicy(c *gin.Context) {
	h.changePolicy(c, service.AuditPolicyGrant, h.AuthzService.Grant)
}

// RevokePolicy 撤销角色的一条路由策略
func (h *Handler) RevokePolicy(c *gin.Context) {
	h.changePolicy(c, service.AuditPolicyRevoke, h.AuthzService.Revoke)
}

func (h *Handler) changePolicy(c *gin.Context, event string, apply func(role, object, method string) (authz.Policy, error)) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	policy, err := apply(req.Role, req.Object, req.Method)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	h.audit(c, service.AccessAuditEntry{
		Event:  event,
		Role:   policy.Role,
		Object: policy.Object,
		Method: policy.Method,
	})
	response.Success(c, policy)
}

func (h *Handler) loadAdminParam(c *gin.Context, failKey string) (*models.Admin, bool) {
	adminID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return nil, false
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return nil, false
	}
	return admin, true
}

// GetAdminRoles 管理员的角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	admin, ok := h.loadAdminParam(c, "error.authz_fetch_failed")
	if !ok {
		return
	}
	roles, err := h.AuthzService.AdminRoles(admin.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": admin.ID, "roles": roles})
}

// SetAdminRoles 整体替换管理员的角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	admin, ok := h.loadAdminParam(c, "error.authz_save_failed")
	if !ok {
		return
	}
	var req roleAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	roles, err := h.AuthzService.AssignRoles(admin.ID, req.Roles)
	if err != nil {
		respondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	h.audit(c, service.AccessAuditEntry{
		Event:  service.AuditAdminRolesSet,
		Target: admin,
		Detail: models.JSON{"roles": roles},
	})
	response.Success(c, gin.H{"admin_id": admin.ID, "roles": roles})
}

// ListAccessAudit 权限审计日志
func (h *Handler) ListAccessAudit(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	operatorID, err := parseQueryUint(c, "operator_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	targetID, err := parseQueryUint(c, "target_admin_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	from, err := parseTimeNullable(c.Query("from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	to, err := parseDateRangeEnd(c.Query("to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	entries, total, err := h.AccessAuditService.List(repository.AccessAuditFilter{
		Page:          page,
		PageSize:      pageSize,
		Event:         c.Query("event"),
		OperatorID:    operatorID,
		TargetAdminID: targetID,
		Role:          c.Query("role"),
		From:          from,
		To:            to,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.NewPagination(page, pageSize, total))
}
