package authz

import "fmt"

// 预置角色
const (
	RoleInventoryManager = "role:inventory_manager"
	RoleSalesClerk       = "role:sales_clerk"
	RoleAnalyst          = "role:analyst"
)

type route struct {
	object string
	method string
}

// builtinRoles 预置角色的路由授权矩阵，超级管理员不经过 RBAC
var builtinRoles = map[string][]route{
	RoleInventoryManager: {
		{"/admin/variants/expand", "POST"},
		{"/admin/categories", anyMethod},
		{"/admin/categories/:id", anyMethod},
		{"/admin/products", anyMethod},
		{"/admin/products/:id", anyMethod},
		{"/admin/products/:id/variations", "PUT"},
		{"/admin/products/:id/movements", "GET"},
		{"/admin/skus/:id", anyMethod},
		{"/admin/skus/:id/adjust", "POST"},
		{"/admin/drafts", anyMethod},
		{"/admin/drafts/:token", anyMethod},
		{"/admin/drafts/:token/*", "POST"},
		{"/admin/returns", "GET"},
		{"/admin/returns/:id", "GET"},
		{"/admin/returns/:id/approve", "POST"},
		{"/admin/returns/:id/reject", "POST"},
		{"/admin/analytics/low-stock", "GET"},
		{"/admin/upload", "POST"},
	},
	RoleSalesClerk: {
		{"/admin/products", "GET"},
		{"/admin/products/:id", "GET"},
		{"/admin/sales", "GET"},
		{"/admin/sales", "POST"},
		{"/admin/sales/:id", "GET"},
		{"/admin/sales/summary", "GET"},
		{"/admin/returns", "GET"},
		{"/admin/returns", "POST"},
		{"/admin/returns/:id", "GET"},
	},
	RoleAnalyst: {
		{"/admin/analytics/*", "GET"},
		{"/admin/sales", "GET"},
		{"/admin/sales/summary", "GET"},
		{"/admin/sales/export", "GET"},
		{"/admin/returns", "GET"},
		{"/admin/returns/export", "GET"},
		{"/admin/settings/analytics-alert", "GET"},
	},
}

// BootstrapBuiltinRoles 注册预置角色并补齐缺失的策略，可重复执行；
// 管理员手工追加给预置角色的策略会保留
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for role, routes := range builtinRoles {
		if err := s.registerRole(role); err != nil {
			return err
		}
		for _, r := range routes {
			if _, err := s.enforcer.AddPolicy(role, r.object, r.method); err != nil {
				return fmt.Errorf("authz: seed %s %s for %s: %w", r.method, r.object, role, err)
			}
		}
		s.mu.Lock()
		s.builtin[role] = struct{}{}
		s.mu.Unlock()
	}
	return nil
}
