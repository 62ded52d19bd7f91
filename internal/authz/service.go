package authz

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// Service 后台路由级 RBAC，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer

	mu      sync.RWMutex
	builtin map[string]struct{}
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz: db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", ruleTable)
	if err != nil {
		return nil, fmt.Errorf("authz: create adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: parse model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz: init enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Service{enforcer: enforcer, builtin: map[string]struct{}{}}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// Allowed 判断管理员能否以 httpMethod 访问 path
func (s *Service) Allowed(adminID uint, path, httpMethod string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(adminSubject(adminID), Resource(path), method(httpMethod))
}

// IsBuiltin 是否为启动时注册的预置角色
func (s *Service) IsBuiltin(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.builtin[role]
	return ok
}

func (s *Service) roleExists(role string) (bool, error) {
	ok, err := s.enforcer.HasNamedGroupingPolicy(groupingPolicy, role, roleRegistry)
	if err != nil {
		return false, fmt.Errorf("authz: check role %s: %w", role, err)
	}
	return ok, nil
}

func (s *Service) registerRole(role string) error {
	if _, err := s.enforcer.AddNamedGroupingPolicy(groupingPolicy, role, roleRegistry); err != nil {
		return fmt.Errorf("authz: register role %s: %w", role, err)
	}
	return nil
}

// CreateRole 创建角色，已存在时直接返回
func (s *Service) CreateRole(raw string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	role, err := RoleName(raw)
	if err != nil {
		return "", err
	}
	if err := s.registerRole(role); err != nil {
		return "", err
	}
	return role, nil
}

// Roles 列出全部角色及其策略数、成员数
func (s *Service) Roles() ([]RoleSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	registered, err := s.enforcer.GetFilteredNamedGroupingPolicy(groupingPolicy, 1, roleRegistry)
	if err != nil {
		return nil, fmt.Errorf("authz: list roles: %w", err)
	}
	out := make([]RoleSummary, 0, len(registered))
	for _, link := range registered {
		role := link[0]
		policies, err := s.enforcer.GetFilteredPolicy(0, role)
		if err != nil {
			return nil, fmt.Errorf("authz: count policies of %s: %w", role, err)
		}
		members, err := s.enforcer.GetFilteredNamedGroupingPolicy(groupingPolicy, 1, role)
		if err != nil {
			return nil, fmt.Errorf("authz: count members of %s: %w", role, err)
		}
		out = append(out, RoleSummary{
			Role:        role,
			BuiltIn:     s.IsBuiltin(role),
			PolicyCount: len(policies),
			AdminCount:  len(members),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

// DeleteRole 删除自定义角色，连同它的策略与成员关系
func (s *Service) DeleteRole(raw string) error {
	if err := s.ready(); err != nil {
		return err
	}
	role, err := RoleName(raw)
	if err != nil {
		return err
	}
	if s.IsBuiltin(role) {
		return ErrRoleBuiltin
	}
	exists, err := s.roleExists(role)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoleNotFound
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(0, role); err != nil {
		return fmt.Errorf("authz: drop policies of %s: %w", role, err)
	}
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy(groupingPolicy, 1, role); err != nil {
		return fmt.Errorf("authz: detach members of %s: %w", role, err)
	}
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy(groupingPolicy, 0, role); err != nil {
		return fmt.Errorf("authz: unregister %s: %w", role, err)
	}
	return nil
}

func (s *Service) checkPolicy(raw, object, httpMethod string) (Policy, error) {
	role, err := RoleName(raw)
	if err != nil {
		return Policy{}, err
	}
	p := Policy{Role: role, Object: Resource(object), Method: method(httpMethod)}
	if _, ok := allowedHTTPMethod[p.Method]; !ok || !strings.HasPrefix(p.Object, adminResource) {
		return Policy{}, ErrPolicyInvalid
	}
	exists, err := s.roleExists(role)
	if err != nil {
		return Policy{}, err
	}
	if !exists {
		return Policy{}, ErrRoleNotFound
	}
	return p, nil
}

// Grant 为已存在的角色授予 (路由模板, 方法)，method 可为 *
func (s *Service) Grant(role, object, httpMethod string) (Policy, error) {
	if err := s.ready(); err != nil {
		return Policy{}, err
	}
	p, err := s.checkPolicy(role, object, httpMethod)
	if err != nil {
		return Policy{}, err
	}
	if _, err := s.enforcer.AddPolicy(p.Role, p.Object, p.Method); err != nil {
		return Policy{}, fmt.Errorf("authz: grant %s %s to %s: %w", p.Method, p.Object, p.Role, err)
	}
	return p, nil
}

// Revoke 撤销角色的一条策略，不存在时静默成功
func (s *Service) Revoke(role, object, httpMethod string) (Policy, error) {
	if err := s.ready(); err != nil {
		return Policy{}, err
	}
	p, err := s.checkPolicy(role, object, httpMethod)
	if err != nil {
		return Policy{}, err
	}
	if _, err := s.enforcer.RemovePolicy(p.Role, p.Object, p.Method); err != nil {
		return Policy{}, fmt.Errorf("authz: revoke %s %s from %s: %w", p.Method, p.Object, p.Role, err)
	}
	return p, nil
}

// RolePolicies 角色的策略列表
func (s *Service) RolePolicies(raw string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	role, err := RoleName(raw)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return nil, fmt.Errorf("authz: policies of %s: %w", role, err)
	}
	return sortedPolicies(rules), nil
}

// AssignRoles 用 roles 整体替换管理员的角色；任一角色不存在则不做修改
func (s *Service) AssignRoles(adminID uint, roles []string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if adminID == 0 {
		return nil, ErrAdminRequired
	}
	seen := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, raw := range roles {
		role, err := RoleName(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[role]; dup {
			continue
		}
		exists, err := s.roleExists(role)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}

	subject := adminSubject(adminID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy(groupingPolicy, 0, subject); err != nil {
		return nil, fmt.Errorf("authz: clear roles of %s: %w", subject, err)
	}
	for _, role := range normalized {
		if _, err := s.enforcer.AddNamedGroupingPolicy(groupingPolicy, subject, role); err != nil {
			return nil, fmt.Errorf("authz: assign %s to %s: %w", role, subject, err)
		}
	}
	sort.Strings(normalized)
	return normalized, nil
}

// ClearAdmin 移除管理员的全部角色，删除管理员时调用
func (s *Service) ClearAdmin(adminID uint) error {
	_, err := s.AssignRoles(adminID, nil)
	return err
}

// AdminRoles 管理员当前的角色
func (s *Service) AdminRoles(adminID uint) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if adminID == 0 {
		return nil, ErrAdminRequired
	}
	links, err := s.enforcer.GetFilteredNamedGroupingPolicy(groupingPolicy, 0, adminSubject(adminID))
	if err != nil {
		return nil, fmt.Errorf("authz: roles of admin %d: %w", adminID, err)
	}
	roles := make([]string, 0, len(links))
	for _, link := range links {
		roles = append(roles, link[1])
	}
	sort.Strings(roles)
	return roles, nil
}

// EffectivePolicies 管理员经由各角色获得的全部策略，去重
func (s *Service) EffectivePolicies(adminID uint) ([]Policy, error) {
	roles, err := s.AdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	var rules [][]string
	for _, role := range roles {
		granted, err := s.enforcer.GetFilteredPolicy(0, role)
		if err != nil {
			return nil, fmt.Errorf("authz: policies of %s: %w", role, err)
		}
		rules = append(rules, granted...)
	}
	return sortedPolicies(rules), nil
}

func sortedPolicies(rules [][]string) []Policy {
	seen := make(map[Policy]struct{}, len(rules))
	out := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		p, ok := policyFromRule(rule)
		if !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Method < b.Method
	})
	return out
}
