package admin

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stockdesk/internal/authz"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthzFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := newHandlerFixture(t)
	authzService, err := authz.NewService(f.db)
	require.NoError(t, err)
	require.NoError(t, authzService.BootstrapBuiltinRoles())

	f.h.AdminRepo = repository.NewAdminRepository(f.db)
	f.h.AuthService = service.NewAuthService(f.h.Config, f.h.AdminRepo)
	f.h.AuthzService = authzService
	f.h.AccessAuditService = service.NewAccessAuditService(repository.NewAccessAuditRepository(f.db))

	operator := &models.Admin{Username: "admin", PasswordHash: "x", IsSuper: true}
	require.NoError(t, f.h.AdminRepo.Create(operator))
	f.adminID = operator.ID
	return f
}

func TestCreateAdminAssignsRolesAndAudits(t *testing.T) {
	f := newAuthzFixture(t)
	w := f.call(t, f.h.CreateAdmin, http.MethodPost, "/admin/authz/admins", map[string]interface{}{
		"username": "clerk01",
		"password": "counter-pass",
		"roles":    []string{"sales_clerk"},
	})
	resp := decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	var created struct {
		ID          uint     `json:"id"`
		DisplayName string   `json:"display_name"`
		IsSuper     bool     `json:"is_super"`
		Roles       []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "clerk01", created.DisplayName)
	assert.False(t, created.IsSuper)
	assert.Equal(t, []string{authz.RoleSalesClerk}, created.Roles)

	entries, total, err := f.h.AccessAuditService.List(repository.AccessAuditFilter{Event: service.AuditAdminCreate})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, f.adminID, entries[0].OperatorID)
	require.NotNil(t, entries[0].TargetAdminID)
	assert.Equal(t, created.ID, *entries[0].TargetAdminID)
}

func TestCreateAdminRejectsDuplicateUsername(t *testing.T) {
	f := newAuthzFixture(t)
	w := f.call(t, f.h.CreateAdmin, http.MethodPost, "/admin/authz/admins", map[string]interface{}{
		"username": "admin",
		"password": "whatever-pass",
	})
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Username already exists", resp.Msg)
}

func TestSetAdminRolesUnknownRole(t *testing.T) {
	f := newAuthzFixture(t)
	clerk := &models.Admin{Username: "clerk02", PasswordHash: "x"}
	require.NoError(t, f.h.AdminRepo.Create(clerk))
	idParam := gin.Param{Key: "id", Value: "2"}
	require.EqualValues(t, 2, clerk.ID)

	w := f.call(t, f.h.SetAdminRoles, http.MethodPut, "/admin/authz/admins/2/roles", map[string]interface{}{
		"roles": []string{"analyst", "ghost"},
	}, idParam)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Role not found", resp.Msg)

	w = f.call(t, f.h.SetAdminRoles, http.MethodPut, "/admin/authz/admins/2/roles", map[string]interface{}{
		"roles": []string{"analyst"},
	}, idParam)
	resp = decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	roles, err := f.h.AuthzService.AdminRoles(clerk.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{authz.RoleAnalyst}, roles)
}

func TestDeleteBuiltinRoleForbidden(t *testing.T) {
	f := newAuthzFixture(t)
	w := f.call(t, f.h.DeleteRole, http.MethodDelete, "/admin/authz/roles/analyst", nil, gin.Param{Key: "role", Value: "analyst"})
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Built-in roles cannot be deleted", resp.Msg)
}

func TestGrantPolicyValidatesObject(t *testing.T) {
	f := newAuthzFixture(t)
	w := f.call(t, f.h.CreateRole, http.MethodPost, "/admin/authz/roles", map[string]interface{}{"role": "night shift"})
	resp := decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	w = f.call(t, f.h.GrantPolicy, http.MethodPost, "/admin/authz/policies", map[string]interface{}{
		"role": "night_shift", "object": "/health", "method": "GET",
	})
	resp = decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.StatusCode)

	w = f.call(t, f.h.GrantPolicy, http.MethodPost, "/admin/authz/policies", map[string]interface{}{
		"role": "night_shift", "object": "/api/v1/admin/sales", "method": "post",
	})
	resp = decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var policy authz.Policy
	require.NoError(t, json.Unmarshal(resp.Data, &policy))
	assert.Equal(t, authz.Policy{Role: "role:night_shift", Object: "/admin/sales", Method: "POST"}, policy)

	w = f.call(t, f.h.ListAccessAudit, http.MethodGet, "/admin/authz/audit-logs?role=night_shift", nil)
	resp = decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var entries []models.AccessAuditLog
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, service.AuditPolicyGrant, entries[0].Event)
}

func TestDeleteAdminGuards(t *testing.T) {
	f := newAuthzFixture(t)
	self := gin.Param{Key: "id", Value: "1"}
	w := f.call(t, f.h.DeleteAdmin, http.MethodDelete, "/admin/authz/admins/1", nil, self)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "You cannot delete yourself", resp.Msg)

	w = f.call(t, f.h.DeleteAdmin, http.MethodDelete, "/admin/authz/admins/99", nil, gin.Param{Key: "id", Value: "99"})
	resp = decodeEnvelope(t, w)
	assert.Equal(t, 404, resp.StatusCode)
}
