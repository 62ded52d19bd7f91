package authz

import (
	"errors"
	"fmt"
	"strings"
)

const (
	apiPrefix      = "/api/v1"
	adminResource  = "/admin/"
	ruleTable      = "casbin_rule"
	roleNamespace  = "role:"
	roleRegistry   = "role:__registry__"
	groupingPolicy = "g"
	anyMethod      = "*"
)

// rbacModel 管理员 -> 角色 -> (路由模板, 方法)，路由用 keyMatch2 匹配 :param 与 *
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

var (
	ErrUnavailable    = errors.New("authz service unavailable")
	ErrRoleRequired   = errors.New("role is required")
	ErrRoleReserved   = errors.New("role name is reserved")
	ErrRoleBuiltin    = errors.New("builtin role cannot be removed")
	ErrRoleNotFound   = errors.New("role not found")
	ErrPolicyInvalid  = errors.New("policy object or method is invalid")
	ErrAdminRequired  = errors.New("admin id is required")
	allowedHTTPMethod = map[string]struct{}{
		"GET": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {}, anyMethod: {},
	}
)

// Policy 角色在某个路由模板上的授权
type Policy struct {
	Role   string `json:"role"`
	Object string `json:"object"`
	Method string `json:"method"`
}

// RoleSummary 角色列表项
type RoleSummary struct {
	Role        string `json:"role"`
	BuiltIn     bool   `json:"built_in"`
	PolicyCount int    `json:"policy_count"`
	AdminCount  int    `json:"admin_count"`
}

func adminSubject(adminID uint) string {
	return fmt.Sprintf("admin:%d", adminID)
}

// RoleName 补齐 role: 前缀，空白替换为下划线
func RoleName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), "_")
	name = strings.TrimPrefix(name, roleNamespace)
	if name == "" {
		return "", ErrRoleRequired
	}
	role := roleNamespace + strings.ToLower(name)
	if role == roleRegistry {
		return "", ErrRoleReserved
	}
	return role, nil
}

// Resource 把请求路径或路由模板转换成策略对象，去掉 /api/v1 前缀
func Resource(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == apiPrefix {
		return "/"
	}
	if trimmed, ok := strings.CutPrefix(path, apiPrefix+"/"); ok {
		return "/" + trimmed
	}
	return path
}

func method(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func policyFromRule(rule []string) (Policy, bool) {
	if len(rule) < 3 {
		return Policy{}, false
	}
	return Policy{Role: rule[0], Object: rule[1], Method: rule[2]}, true
}
