package admin

import (
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/service"
	"github.com/stockdesk/internal/wizard"

	"github.com/gin-gonic/gin"
)

// CreateDraftRequest 创建向导草稿请求
type CreateDraftRequest struct {
	Currency string `json:"currency"`
}

// CreateDraft 创建新增商品向导草稿
func (h *Handler) CreateDraft(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	view, err := h.DraftService.Create(adminID, req.Currency)
	if err != nil {
		respondError(c, response.CodeInternal, "error.draft_save_failed", err)
		return
	}
	response.Success(c, view)
}

// ListDrafts 当前管理员的草稿列表
func (h *Handler) ListDrafts(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	views, err := h.DraftService.ListByAdmin(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.draft_fetch_failed", err)
		return
	}
	response.Success(c, views)
}

// GetDraft 获取草稿
func (h *Handler) GetDraft(c *gin.Context) {
	h.withDraft(c, "error.draft_fetch_failed", func(token string, adminID uint) (*service.DraftView, error) {
		return h.DraftService.Get(token, adminID)
	})
}

// PatchDraft 局部更新草稿
func (h *Handler) PatchDraft(c *gin.Context) {
	var patch wizard.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	h.withDraft(c, "error.draft_save_failed", func(token string, adminID uint) (*service.DraftView, error) {
		return h.DraftService.Patch(token, adminID, patch)
	})
}

// RegenerateDraft 按草稿属性重新展开变体
func (h *Handler) RegenerateDraft(c *gin.Context) {
	h.withDraft(c, "error.draft_save_failed", func(token string, adminID uint) (*service.DraftView, error) {
		return h.DraftService.Regenerate(token, adminID)
	})
}

// AdvanceDraft 校验当前步骤并前进
func (h *Handler) AdvanceDraft(c *gin.Context) {
	h.withDraft(c, "error.draft_save_failed", func(token string, adminID uint) (*service.DraftView, error) {
		return h.DraftService.Advance(token, adminID)
	})
}

// BackDraft 回退一步
func (h *Handler) BackDraft(c *gin.Context) {
	h.withDraft(c, "error.draft_save_failed", func(token string, adminID uint) (*service.DraftView, error) {
		return h.DraftService.Back(token, adminID)
	})
}

// SubmitDraft 提交草稿生成商品
func (h *Handler) SubmitDraft(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	token := c.Param("token")
	product, err := h.DraftService.Submit(c.Request.Context(), token, adminID)
	if err != nil {
		respondWithMappedError(c, err, draftSubmitErrorRules, response.CodeInternal, "error.product_create_failed")
		return
	}
	response.Success(c, product)
}

// DeleteDraft 删除草稿
func (h *Handler) DeleteDraft(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	if err := h.DraftService.Delete(c.Param("token"), adminID); err != nil {
		respondWithMappedError(c, err, draftErrorRules, response.CodeInternal, "error.draft_delete_failed")
		return
	}
	response.Success(c, nil)
}

func (h *Handler) withDraft(c *gin.Context, fallbackKey string, fn func(token string, adminID uint) (*service.DraftView, error)) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	view, err := fn(c.Param("token"), adminID)
	if err != nil {
		respondWithMappedError(c, err, draftErrorRules, response.CodeInternal, fallbackKey)
		return
	}
	response.Success(c, view)
}
