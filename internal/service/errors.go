package service

import "errors"

// 通用
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// 认证与验证码
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrWeakPassword         = errors.New("weak password")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 分类
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category in use")
	ErrSlugExists       = errors.New("slug already exists")
)

// 商品与库存
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSKUNotFound       = errors.New("sku not found")
	ErrProductInvalid    = errors.New("product invalid")
	ErrSKUCodeConflict   = errors.New("sku code conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockDeltaInvalid = errors.New("stock delta invalid")
	ErrVariationsStale   = errors.New("variations stale")
)

// 向导草稿
var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrDraftIncomplete  = errors.New("draft incomplete")
	ErrDraftForbidden   = errors.New("draft belongs to another admin")
	ErrDraftStepInvalid = errors.New("draft step invalid")
)

// 销售与退货
var (
	ErrSaleNotFound           = errors.New("sale not found")
	ErrSaleInvalid            = errors.New("sale invalid")
	ErrSaleChannelInvalid     = errors.New("sale channel invalid")
	ErrReturnNotFound         = errors.New("return not found")
	ErrReturnInvalid          = errors.New("return invalid")
	ErrReturnQuantityExceeded = errors.New("return quantity exceeded")
	ErrReturnStatusInvalid    = errors.New("return status invalid")
	ErrReturnConditionInvalid = errors.New("return condition invalid")
)

// 分析报表
var (
	ErrAnalyticsRangeInvalid    = errors.New("analytics range invalid")
	ErrAnalyticsTimezoneInvalid = errors.New("analytics timezone invalid")
)

// 上传
var (
	ErrUploadTooLarge      = errors.New("upload file too large")
	ErrUploadTypeInvalid   = errors.New("upload file type invalid")
	ErrUploadImageTooLarge = errors.New("upload image dimensions too large")
	ErrUploadImageInvalid  = errors.New("upload image invalid")
)

// 设置
var (
	ErrSettingInvalid = errors.New("setting invalid")
)
