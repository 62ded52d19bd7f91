package admin

import (
	"errors"
	"strings"

	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/i18n"
	"github.com/stockdesk/internal/service"
	"github.com/stockdesk/internal/variant"
	"github.com/stockdesk/internal/wizard"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	if respondVariantValidationError(c, err) || respondDraftIncompleteError(c, err) {
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// respondVariantValidationError 变体校验错误带上出错的属性名
func respondVariantValidationError(c *gin.Context, err error) bool {
	var verr *variant.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	key, arg := "error.variant_metadata_invalid", interface{}(verr.Name)
	switch verr.Reason {
	case variant.ReasonEmptyOptions:
		key = "error.variant_options_required"
	case variant.ReasonDuplicateName:
		key = "error.variant_name_duplicate"
	case variant.ReasonTooManyVariations:
		key, arg = "error.variant_too_many", verr.Limit
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), key, arg)
	respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
	return true
}

// respondDraftIncompleteError 向导步骤缺项时列出缺失字段
func respondDraftIncompleteError(c *gin.Context, err error) bool {
	var serr *wizard.StepError
	if !errors.As(err, &serr) {
		return false
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.draft_incomplete", string(serr.Step), strings.Join(serr.Fields, ", "))
	respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
	return true
}

var categoryErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, key: "error.category_not_found"},
	{target: service.ErrCategoryInUse, code: response.CodeBadRequest, key: "error.category_in_use"},
	{target: service.ErrSlugExists, code: response.CodeBadRequest, key: "error.slug_exists"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrSKUNotFound, code: response.CodeNotFound, key: "error.sku_not_found"},
	{target: service.ErrCategoryNotFound, code: response.CodeBadRequest, key: "error.category_not_found"},
	{target: service.ErrProductInvalid, code: response.CodeBadRequest, key: "error.product_invalid"},
	{target: service.ErrSlugExists, code: response.CodeBadRequest, key: "error.slug_exists"},
	{target: service.ErrSKUCodeConflict, code: response.CodeBadRequest, key: "error.sku_code_conflict"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, key: "error.insufficient_stock"},
	{target: service.ErrStockDeltaInvalid, code: response.CodeBadRequest, key: "error.stock_delta_invalid"},
	{target: service.ErrVariationsStale, code: response.CodeBadRequest, key: "error.variations_stale"},
}

var draftErrorRules = []mappedHandlerError{
	{target: service.ErrDraftNotFound, code: response.CodeNotFound, key: "error.draft_not_found"},
	{target: service.ErrDraftForbidden, code: response.CodeForbidden, key: "error.draft_forbidden"},
	{target: service.ErrDraftStepInvalid, code: response.CodeBadRequest, key: "error.draft_step_invalid"},
	{target: service.ErrDraftIncomplete, code: response.CodeBadRequest, key: "error.draft_incomplete_generic"},
}

var saleErrorRules = []mappedHandlerError{
	{target: service.ErrSaleNotFound, code: response.CodeNotFound, key: "error.sale_not_found"},
	{target: service.ErrSaleInvalid, code: response.CodeBadRequest, key: "error.sale_invalid"},
	{target: service.ErrSaleChannelInvalid, code: response.CodeBadRequest, key: "error.sale_channel_invalid"},
	{target: service.ErrSKUNotFound, code: response.CodeBadRequest, key: "error.sku_not_found"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, key: "error.insufficient_stock"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var returnErrorRules = []mappedHandlerError{
	{target: service.ErrReturnNotFound, code: response.CodeNotFound, key: "error.return_not_found"},
	{target: service.ErrSaleNotFound, code: response.CodeBadRequest, key: "error.sale_not_found"},
	{target: service.ErrReturnInvalid, code: response.CodeBadRequest, key: "error.return_invalid"},
	{target: service.ErrReturnQuantityExceeded, code: response.CodeBadRequest, key: "error.return_quantity_exceeded"},
	{target: service.ErrReturnStatusInvalid, code: response.CodeBadRequest, key: "error.return_status_invalid"},
	{target: service.ErrReturnConditionInvalid, code: response.CodeBadRequest, key: "error.return_condition_invalid"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var analyticsErrorRules = []mappedHandlerError{
	{target: service.ErrAnalyticsRangeInvalid, code: response.CodeBadRequest, key: "error.analytics_range_invalid"},
	{target: service.ErrAnalyticsTimezoneInvalid, code: response.CodeBadRequest, key: "error.analytics_timezone_invalid"},
}

var uploadErrorRules = []mappedHandlerError{
	{target: service.ErrUploadTooLarge, code: response.CodeBadRequest, key: "error.upload_too_large"},
	{target: service.ErrUploadTypeInvalid, code: response.CodeBadRequest, key: "error.upload_type_invalid"},
	{target: service.ErrUploadImageTooLarge, code: response.CodeBadRequest, key: "error.upload_image_too_large"},
	{target: service.ErrUploadImageInvalid, code: response.CodeBadRequest, key: "error.upload_image_invalid"},
}

var draftSubmitErrorRules = concatMappedHandlerErrors(draftErrorRules, productErrorRules)
