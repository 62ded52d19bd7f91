package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// ErrTokenInvalid 签名、算法或有效期校验未通过
var ErrTokenInvalid = errors.New("token invalid")

// TokenClaims 后台 Token 载荷；TokenVersion 与鉴权快照比对用于吊销
type TokenClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// Session 登录成功后的会话
type Session struct {
	Admin     *models.Admin
	Token     string
	ExpiresAt time.Time
}

// AdminProfile 对外展示的管理员信息
type AdminProfile struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	IsSuper     bool       `json:"is_super"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func NewAdminProfile(admin *models.Admin) AdminProfile {
	if admin == nil {
		return AdminProfile{}
	}
	return AdminProfile{
		ID:          admin.ID,
		Username:    admin.Username,
		DisplayName: admin.Label(),
		IsSuper:     admin.IsSuper,
		LastLoginAt: admin.LastLoginAt,
	}
}

// AuthService 后台账号的密码、Token 与会话
type AuthService struct {
	cfg    *config.Config
	admins repository.AdminRepository
	now    func() time.Time
}

func NewAuthService(cfg *config.Config, admins repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, admins: admins, now: time.Now}
}

func (s *AuthService) secret() []byte {
	return []byte(s.cfg.JWT.SecretKey)
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.cfg.JWT.ExpireHours > 0 {
		return time.Duration(s.cfg.JWT.ExpireHours) * time.Hour
	}
	return defaultTokenTTL
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword 按配置的密码策略校验，未加载配置时不限制
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// IssueToken 签发 HS256 Token
func (s *AuthService) IssueToken(admin *models.Admin) (string, time.Time, error) {
	issued := s.now()
	expires := issued.Add(s.tokenTTL())
	claims := TokenClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken 只接受 HS256 且 admin_id 非零的 Token
func (s *AuthService) ParseToken(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if claims.AdminID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Login 校验账号密码，记录登录时间并刷新鉴权快照
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	admin, err := s.admins.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if admin == nil || !passwordMatches(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	token, expires, err := s.IssueToken(admin)
	if err != nil {
		return nil, err
	}
	now := s.now()
	admin.LastLoginAt = &now
	if err := s.admins.Update(admin); err != nil {
		return nil, err
	}
	s.refreshSnapshot(ctx, admin)
	return &Session{Admin: admin, Token: token, ExpiresAt: expires}, nil
}

// ChangePassword 旧密码正确且新密码合规后更新，并吊销此前签发的全部 Token
func (s *AuthService) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error {
	admin, err := s.mustAdmin(adminID)
	if err != nil {
		return err
	}
	if !passwordMatches(admin.PasswordHash, oldPassword) {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := s.now()
	admin.PasswordHash = hash
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.admins.Update(admin); err != nil {
		return err
	}
	s.refreshSnapshot(ctx, admin)
	return nil
}

func (s *AuthService) GetProfile(adminID uint) (*AdminProfile, error) {
	admin, err := s.mustAdmin(adminID)
	if err != nil {
		return nil, err
	}
	profile := NewAdminProfile(admin)
	return &profile, nil
}

func (s *AuthService) mustAdmin(id uint) (*models.Admin, error) {
	admin, err := s.admins.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}

func (s *AuthService) refreshSnapshot(ctx context.Context, admin *models.Admin) {
	if err := cache.StoreAuthSnapshot(ctx, admin); err != nil {
		logger.Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
}
