package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/variant"
	"github.com/stockdesk/internal/wizard"

	"github.com/google/uuid"
)

// DraftService 新增商品向导草稿服务
type DraftService struct {
	repo       repository.DraftRepository
	productSvc *ProductService
	now        func() time.Time
}

// NewDraftService 创建草稿服务
func NewDraftService(repo repository.DraftRepository, productSvc *ProductService) *DraftService {
	return &DraftService{repo: repo, productSvc: productSvc, now: time.Now}
}

// DraftView 草稿对外视图
type DraftView struct {
	Token     string       `json:"token"`
	Step      wizard.Step  `json:"step"`
	Draft     wizard.Draft `json:"draft"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Create 为管理员创建空白草稿
func (s *DraftService) Create(adminID uint, currency string) (*DraftView, error) {
	draft := wizard.Default()
	if currency = strings.ToUpper(strings.TrimSpace(currency)); currency != "" {
		draft.Pricing.Currency = currency
	} else if s.productSvc != nil {
		draft.Pricing.Currency = s.productSvc.currency
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	row := &models.ProductDraft{
		Token:       uuid.NewString(),
		AdminID:     adminID,
		Step:        string(draft.Step),
		PayloadJSON: string(payload),
	}
	if err := s.repo.Create(row); err != nil {
		return nil, err
	}
	return newDraftView(row, draft), nil
}

// Get 获取草稿，只允许所属管理员访问
func (s *DraftService) Get(token string, adminID uint) (*DraftView, error) {
	row, draft, err := s.load(token, adminID)
	if err != nil {
		return nil, err
	}
	return newDraftView(row, draft), nil
}

// ListByAdmin 管理员的草稿列表
func (s *DraftService) ListByAdmin(adminID uint) ([]DraftView, error) {
	rows, err := s.repo.ListByAdmin(adminID)
	if err != nil {
		return nil, err
	}
	views := make([]DraftView, 0, len(rows))
	for i := range rows {
		draft, err := decodeDraft(rows[i].PayloadJSON)
		if err != nil {
			logger.Warnw("draft_payload_decode_failed", "token", rows[i].Token, "error", err)
			continue
		}
		views = append(views, *newDraftView(&rows[i], draft))
	}
	return views, nil
}

// Patch 合并局部更新并保存
func (s *DraftService) Patch(token string, adminID uint, patch wizard.Patch) (*DraftView, error) {
	row, draft, err := s.load(token, adminID)
	if err != nil {
		return nil, err
	}
	if patch.Step != nil && !patch.Step.Valid() {
		return nil, ErrDraftStepInvalid
	}
	if patch.Empty() {
		return newDraftView(row, draft), nil
	}
	return s.save(row, wizard.Merge(draft, patch))
}

// Regenerate 按草稿属性重新展开变体；展开失败时不写库
func (s *DraftService) Regenerate(token string, adminID uint) (*DraftView, error) {
	row, draft, err := s.load(token, adminID)
	if err != nil {
		return nil, err
	}
	defaults := wizardDefaults(s.productSvc)
	next, err := wizard.RegenerateWithDefaults(draft, defaults)
	if err != nil {
		return nil, err
	}
	return s.save(row, next)
}

// Advance 校验当前步骤并前进
func (s *DraftService) Advance(token string, adminID uint) (*DraftView, error) {
	row, draft, err := s.load(token, adminID)
	if err != nil {
		return nil, err
	}
	next, err := wizard.Advance(draft)
	if err != nil {
		return nil, mapWizardError(err)
	}
	return s.save(row, next)
}

// Back 回退一步
func (s *DraftService) Back(token string, adminID uint) (*DraftView, error) {
	row, draft, err := s.load(token, adminID)
	if err != nil {
		return nil, err
	}
	return s.save(row, wizard.Back(draft))
}

// Submit 校验全部步骤后创建商品并删除草稿
func (s *DraftService) Submit(ctx context.Context, token string, adminID uint) (*models.Product, error) {
	row, draft, err := s.load(token, adminID)
	if err != nil {
		return nil, err
	}
	if err := wizard.ValidateAll(draft); err != nil {
		return nil, mapWizardError(err)
	}

	variations := draft.Variations
	if len(variations) == 0 && len(draft.Attributes) == 0 {
		variations = nil
	}
	product, err := s.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID:     draft.CategoryID,
		Name:           draft.Basic.Name,
		Brand:          draft.Basic.Brand,
		Description:    draft.Basic.Description,
		SKUPrefix:      draft.Basic.SKUPrefix,
		Attributes:     draft.Attributes,
		Variations:     variations,
		Price:          draft.Pricing.Price,
		CompareAtPrice: draft.Pricing.CompareAtPrice,
		Cost:           draft.Pricing.Cost,
		Currency:       draft.Pricing.Currency,
		Images:         draft.Media.Images,
		Tags:           draft.Tags,
		OperatorID:     adminID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteByToken(row.Token); err != nil {
		logger.Warnw("draft_delete_after_submit_failed", "token", row.Token, "product_id", product.ID, "error", err)
	}
	logger.Infow("draft_submitted", "token", row.Token, "admin_id", adminID, "product_id", product.ID)
	return product, nil
}

// Delete 删除草稿
func (s *DraftService) Delete(token string, adminID uint) error {
	row, _, err := s.load(token, adminID)
	if err != nil {
		return err
	}
	return s.repo.DeleteByToken(row.Token)
}

// PurgeStale 清理超过保留天数未更新的草稿
func (s *DraftService) PurgeStale(olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = constants.DefaultDraftRetentionDays
	}
	before := s.now().AddDate(0, 0, -olderThanDays)
	return s.repo.DeleteOlderThan(before)
}

func (s *DraftService) load(token string, adminID uint) (*models.ProductDraft, wizard.Draft, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, wizard.Draft{}, ErrDraftNotFound
	}
	row, err := s.repo.GetByToken(token)
	if err != nil {
		return nil, wizard.Draft{}, err
	}
	if row == nil {
		return nil, wizard.Draft{}, ErrDraftNotFound
	}
	if row.AdminID != adminID {
		return nil, wizard.Draft{}, ErrDraftForbidden
	}
	draft, err := decodeDraft(row.PayloadJSON)
	if err != nil {
		return nil, wizard.Draft{}, err
	}
	return row, draft, nil
}

func (s *DraftService) save(row *models.ProductDraft, draft wizard.Draft) (*DraftView, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	row.Step = string(draft.Step)
	row.PayloadJSON = string(payload)
	if err := s.repo.Update(row); err != nil {
		return nil, err
	}
	return newDraftView(row, draft), nil
}

func decodeDraft(payload string) (wizard.Draft, error) {
	draft := wizard.Default()
	if strings.TrimSpace(payload) == "" {
		return draft, nil
	}
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return wizard.Draft{}, fmt.Errorf("decode draft payload: %w", err)
	}
	return draft, nil
}

func newDraftView(row *models.ProductDraft, draft wizard.Draft) *DraftView {
	return &DraftView{
		Token:     row.Token,
		Step:      draft.Step,
		Draft:     draft,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func wizardDefaults(productSvc *ProductService) variant.Defaults {
	if productSvc == nil {
		return variant.DefaultDefaults()
	}
	return productSvc.VariantDefaults()
}

func mapWizardError(err error) error {
	switch {
	case errors.Is(err, wizard.ErrStepInvalid):
		return ErrDraftStepInvalid
	case errors.Is(err, wizard.ErrIncomplete):
		return fmt.Errorf("%w: %w", ErrDraftIncomplete, err)
	default:
		return err
	}
}
