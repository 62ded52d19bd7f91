package i18n

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                  "请求参数错误",
		"error.unauthorized":                 "未登录或登录已失效",
		"error.forbidden":                    "没有权限执行该操作",
		"error.auth_header_missing":          "缺少 Authorization 请求头",
		"error.auth_header_invalid":          "Authorization 请求头格式错误",
		"error.token_invalid":                "登录凭证无效",
		"error.token_revoked":                "登录凭证已失效，请重新登录",
		"error.rate_limited":                 "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":       "限流服务不可用，请稍后重试",
		"error.login_too_many":               "登录尝试过多，请 %d 秒后重试",
		"error.login_failed":                 "登录失败",
		"error.admin_login_invalid":          "用户名或密码错误",
		"error.captcha_required":             "请输入验证码",
		"error.captcha_invalid":              "验证码错误或已过期",
		"error.captcha_config_invalid":       "验证码配置无效",
		"error.captcha_verify_failed":        "验证码校验失败",
		"error.captcha_generate_failed":      "验证码生成失败",
		"error.password_old_invalid":         "原密码错误",
		"error.password_weak":                "密码强度不足",
		"error.password_min_length":          "密码长度至少 %d 位",
		"error.password_require_upper":       "密码需包含大写字母",
		"error.password_require_lower":       "密码需包含小写字母",
		"error.password_require_number":      "密码需包含数字",
		"error.password_require_special":     "密码需包含特殊字符",
		"error.save_failed":                  "保存失败",
		"error.admin_id_invalid":             "管理员 ID 无效",
		"error.admin_not_found":              "管理员不存在",
		"error.admin_fetch_failed":           "获取管理员信息失败",
		"error.admin_create_failed":          "创建管理员失败",
		"error.admin_update_failed":          "更新管理员失败",
		"error.admin_delete_failed":          "删除管理员失败",
		"error.admin_delete_last_forbidden":  "不能删除最后一个管理员",
		"error.admin_delete_protected":       "内置超级管理员不可删除",
		"error.admin_delete_self_forbidden":  "不能删除当前登录的管理员",
		"error.admin_username_exists":        "用户名已存在",
		"error.admin_username_invalid":       "用户名格式错误（3-64 位且不含空白）",
		"error.authz_fetch_failed":           "获取权限数据失败",
		"error.authz_save_failed":            "保存权限设置失败",
		"error.role_required":                "请填写角色名称",
		"error.role_reserved":                "该角色名称为系统保留",
		"error.role_builtin":                 "预置角色不可删除",
		"error.role_not_found":               "角色不存在",
		"error.policy_invalid":               "策略路径或请求方法无效",
		"error.category_fetch_failed":        "获取分类失败",
		"error.category_create_failed":       "创建分类失败",
		"error.category_update_failed":       "更新分类失败",
		"error.category_delete_failed":       "删除分类失败",
		"error.category_not_found":           "分类不存在",
		"error.category_in_use":              "分类下仍有商品，无法删除",
		"error.slug_exists":                  "标识已存在",
		"error.variant_options_required":     "变体类型「%s」至少需要一个选项",
		"error.variant_name_duplicate":       "变体类型「%s」重复（名称不区分大小写）",
		"error.variant_metadata_invalid":     "变体字段「%s」取值无效",
		"error.variant_expand_failed":        "变体展开失败",
		"error.variant_too_many":             "变体组合超过上限 %d 个，请减少选项",
		"error.variations_stale":             "变体与当前属性不一致，请重新生成变体",
		"error.product_fetch_failed":         "获取商品失败",
		"error.product_create_failed":        "创建商品失败",
		"error.product_update_failed":        "更新商品失败",
		"error.product_delete_failed":        "删除商品失败",
		"error.product_not_found":            "商品不存在",
		"error.product_invalid":              "商品信息不完整或无效",
		"error.sku_not_found":                "SKU 不存在",
		"error.sku_update_failed":            "更新 SKU 失败",
		"error.sku_code_conflict":            "SKU 编码冲突",
		"error.insufficient_stock":           "库存不足",
		"error.stock_delta_invalid":          "库存调整数量无效",
		"error.stock_adjust_failed":          "库存调整失败",
		"error.movement_fetch_failed":        "获取库存流水失败",
		"error.draft_not_found":              "草稿不存在",
		"error.draft_forbidden":              "无权访问该草稿",
		"error.draft_step_invalid":           "向导步骤无效",
		"error.draft_incomplete":             "步骤 %s 未完成：%s",
		"error.draft_incomplete_generic":     "草稿尚未填写完整",
		"error.draft_fetch_failed":           "获取草稿失败",
		"error.draft_save_failed":            "保存草稿失败",
		"error.draft_delete_failed":          "删除草稿失败",
		"error.sale_fetch_failed":            "获取销售记录失败",
		"error.sale_create_failed":           "录入销售失败",
		"error.sale_not_found":               "销售记录不存在",
		"error.sale_invalid":                 "销售信息无效",
		"error.sale_channel_invalid":         "销售渠道无效",
		"error.return_fetch_failed":          "获取退货申请失败",
		"error.return_create_failed":         "创建退货申请失败",
		"error.return_update_failed":         "处理退货申请失败",
		"error.return_not_found":             "退货申请不存在",
		"error.return_invalid":               "退货信息无效",
		"error.return_quantity_exceeded":     "退货数量超过可退数量",
		"error.return_status_invalid":        "退货申请已处理",
		"error.return_condition_invalid":     "退货商品状态无效",
		"error.analytics_fetch_failed":       "获取分析数据失败",
		"error.analytics_range_invalid":      "统计区间无效",
		"error.analytics_timezone_invalid":   "时区无效",
		"error.analytics_cache_clear_failed": "清理分析缓存失败",
		"error.export_failed":                "导出失败",
		"error.file_missing":                 "请选择要上传的文件",
		"error.upload_failed":                "文件上传失败",
		"error.upload_too_large":             "文件过大",
		"error.upload_type_invalid":          "不支持的文件类型",
		"error.upload_image_too_large":       "图片尺寸过大",
		"error.upload_image_invalid":         "图片无法解析",
		"error.settings_fetch_failed":        "获取设置失败",
		"error.settings_save_failed":         "保存设置失败",
		"error.settings_invalid":             "设置取值无效",
	},
	LocaleTW: {
		"error.bad_request":                  "請求參數錯誤",
		"error.unauthorized":                 "未登入或登入已失效",
		"error.forbidden":                    "沒有權限執行該操作",
		"error.auth_header_missing":          "缺少 Authorization 請求頭",
		"error.auth_header_invalid":          "Authorization 請求頭格式錯誤",
		"error.token_invalid":                "登入憑證無效",
		"error.token_revoked":                "登入憑證已失效，請重新登入",
		"error.rate_limited":                 "請求過於頻繁，請 %d 秒後重試",
		"error.rate_limit_unavailable":       "限流服務不可用，請稍後重試",
		"error.login_too_many":               "登入嘗試過多，請 %d 秒後重試",
		"error.login_failed":                 "登入失敗",
		"error.admin_login_invalid":          "使用者名稱或密碼錯誤",
		"error.captcha_required":             "請輸入驗證碼",
		"error.captcha_invalid":              "驗證碼錯誤或已過期",
		"error.captcha_config_invalid":       "驗證碼設定無效",
		"error.captcha_verify_failed":        "驗證碼校驗失敗",
		"error.captcha_generate_failed":      "驗證碼產生失敗",
		"error.password_old_invalid":         "原密碼錯誤",
		"error.password_weak":                "密碼強度不足",
		"error.password_min_length":          "密碼長度至少 %d 位",
		"error.password_require_upper":       "密碼需包含大寫字母",
		"error.password_require_lower":       "密碼需包含小寫字母",
		"error.password_require_number":      "密碼需包含數字",
		"error.password_require_special":     "密碼需包含特殊字元",
		"error.save_failed":                  "儲存失敗",
		"error.admin_id_invalid":             "管理員 ID 無效",
		"error.admin_not_found":              "管理員不存在",
		"error.admin_fetch_failed":           "取得管理員資訊失敗",
		"error.admin_create_failed":          "建立管理員失敗",
		"error.admin_update_failed":          "更新管理員失敗",
		"error.admin_delete_failed":          "刪除管理員失敗",
		"error.admin_delete_last_forbidden":  "不能刪除最後一個管理員",
		"error.admin_delete_protected":       "內建超級管理員不可刪除",
		"error.admin_delete_self_forbidden":  "不能刪除目前登入的管理員",
		"error.admin_username_exists":        "使用者名稱已存在",
		"error.admin_username_invalid":       "使用者名稱格式錯誤（3-64 位且不含空白）",
		"error.authz_fetch_failed":           "取得權限資料失敗",
		"error.authz_save_failed":            "儲存權限設定失敗",
		"error.role_required":                "請填寫角色名稱",
		"error.role_reserved":                "該角色名稱為系統保留",
		"error.role_builtin":                 "預置角色不可刪除",
		"error.role_not_found":               "角色不存在",
		"error.policy_invalid":               "策略路徑或請求方法無效",
		"error.category_fetch_failed":        "取得分類失敗",
		"error.category_create_failed":       "建立分類失敗",
		"error.category_update_failed":       "更新分類失敗",
		"error.category_delete_failed":       "刪除分類失敗",
		"error.category_not_found":           "分類不存在",
		"error.category_in_use":              "分類下仍有商品，無法刪除",
		"error.slug_exists":                  "識別碼已存在",
		"error.variant_options_required":     "變體類型「%s」至少需要一個選項",
		"error.variant_name_duplicate":       "變體類型「%s」重複（名稱不區分大小寫）",
		"error.variant_metadata_invalid":     "變體欄位「%s」取值無效",
		"error.variant_expand_failed":        "變體展開失敗",
		"error.variant_too_many":             "變體組合超過上限 %d 個，請減少選項",
		"error.variations_stale":             "變體與目前屬性不一致，請重新產生變體",
		"error.product_fetch_failed":         "取得商品失敗",
		"error.product_create_failed":        "建立商品失敗",
		"error.product_update_failed":        "更新商品失敗",
		"error.product_delete_failed":        "刪除商品失敗",
		"error.product_not_found":            "商品不存在",
		"error.product_invalid":              "商品資訊不完整或無效",
		"error.sku_not_found":                "SKU 不存在",
		"error.sku_update_failed":            "更新 SKU 失敗",
		"error.sku_code_conflict":            "SKU 編碼衝突",
		"error.insufficient_stock":           "庫存不足",
		"error.stock_delta_invalid":          "庫存調整數量無效",
		"error.stock_adjust_failed":          "庫存調整失敗",
		"error.movement_fetch_failed":        "取得庫存流水失敗",
		"error.draft_not_found":              "草稿不存在",
		"error.draft_forbidden":              "無權存取該草稿",
		"error.draft_step_invalid":           "精靈步驟無效",
		"error.draft_incomplete":             "步驟 %s 未完成：%s",
		"error.draft_incomplete_generic":     "草稿尚未填寫完整",
		"error.draft_fetch_failed":           "取得草稿失敗",
		"error.draft_save_failed":            "儲存草稿失敗",
		"error.draft_delete_failed":          "刪除草稿失敗",
		"error.sale_fetch_failed":            "取得銷售紀錄失敗",
		"error.sale_create_failed":           "登錄銷售失敗",
		"error.sale_not_found":               "銷售紀錄不存在",
		"error.sale_invalid":                 "銷售資訊無效",
		"error.sale_channel_invalid":         "銷售通路無效",
		"error.return_fetch_failed":          "取得退貨申請失敗",
		"error.return_create_failed":         "建立退貨申請失敗",
		"error.return_update_failed":         "處理退貨申請失敗",
		"error.return_not_found":             "退貨申請不存在",
		"error.return_invalid":               "退貨資訊無效",
		"error.return_quantity_exceeded":     "退貨數量超過可退數量",
		"error.return_status_invalid":        "退貨申請已處理",
		"error.return_condition_invalid":     "退貨商品狀態無效",
		"error.analytics_fetch_failed":       "取得分析資料失敗",
		"error.analytics_range_invalid":      "統計區間無效",
		"error.analytics_timezone_invalid":   "時區無效",
		"error.analytics_cache_clear_failed": "清除分析快取失敗",
		"error.export_failed":                "匯出失敗",
		"error.file_missing":                 "請選擇要上傳的檔案",
		"error.upload_failed":                "檔案上傳失敗",
		"error.upload_too_large":             "檔案過大",
		"error.upload_type_invalid":          "不支援的檔案類型",
		"error.upload_image_too_large":       "圖片尺寸過大",
		"error.upload_image_invalid":         "圖片無法解析",
		"error.settings_fetch_failed":        "取得設定失敗",
		"error.settings_save_failed":         "儲存設定失敗",
		"error.settings_invalid":             "設定取值無效",
	},
	LocaleEN: {
		"error.bad_request":                  "Invalid request parameters",
		"error.unauthorized":                 "Not signed in or session expired",
		"error.forbidden":                    "You do not have permission to perform this action",
		"error.auth_header_missing":          "Authorization header is missing",
		"error.auth_header_invalid":          "Authorization header is malformed",
		"error.token_invalid":                "Token is invalid",
		"error.token_revoked":                "Token has been revoked, please sign in again",
		"error.rate_limited":                 "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":       "Rate limiter unavailable, please retry later",
		"error.login_too_many":               "Too many sign-in attempts, retry in %d seconds",
		"error.login_failed":                 "Sign-in failed",
		"error.admin_login_invalid":          "Incorrect username or password",
		"error.captcha_required":             "Captcha is required",
		"error.captcha_invalid":              "Captcha is incorrect or expired",
		"error.captcha_config_invalid":       "Captcha configuration is invalid",
		"error.captcha_verify_failed":        "Captcha verification failed",
		"error.captcha_generate_failed":      "Failed to generate captcha",
		"error.password_old_invalid":         "Current password is incorrect",
		"error.password_weak":                "Password is too weak",
		"error.password_min_length":          "Password must be at least %d characters",
		"error.password_require_upper":       "Password must contain an uppercase letter",
		"error.password_require_lower":       "Password must contain a lowercase letter",
		"error.password_require_number":      "Password must contain a number",
		"error.password_require_special":     "Password must contain a special character",
		"error.save_failed":                  "Failed to save",
		"error.admin_id_invalid":             "Invalid admin ID",
		"error.admin_not_found":              "Admin not found",
		"error.admin_fetch_failed":           "Failed to load admin",
		"error.admin_create_failed":          "Failed to create admin",
		"error.admin_update_failed":          "Failed to update admin",
		"error.admin_delete_failed":          "Failed to delete admin",
		"error.admin_delete_last_forbidden":  "The last admin cannot be deleted",
		"error.admin_delete_protected":       "The built-in super admin cannot be deleted",
		"error.admin_delete_self_forbidden":  "You cannot delete yourself",
		"error.admin_username_exists":        "Username already exists",
		"error.admin_username_invalid":       "Username must be 3-64 characters without whitespace",
		"error.authz_fetch_failed":           "Failed to load permissions",
		"error.authz_save_failed":            "Failed to save permissions",
		"error.role_required":                "Role name is required",
		"error.role_reserved":                "This role name is reserved",
		"error.role_builtin":                 "Built-in roles cannot be deleted",
		"error.role_not_found":               "Role not found",
		"error.policy_invalid":               "Policy path or method is invalid",
		"error.category_fetch_failed":        "Failed to load categories",
		"error.category_create_failed":       "Failed to create category",
		"error.category_update_failed":       "Failed to update category",
		"error.category_delete_failed":       "Failed to delete category",
		"error.category_not_found":           "Category not found",
		"error.category_in_use":              "Category still has products",
		"error.slug_exists":                  "Slug already exists",
		"error.variant_options_required":     "Variant type \"%s\" needs at least one option",
		"error.variant_name_duplicate":       "Variant type \"%s\" is declared more than once",
		"error.variant_metadata_invalid":     "Variant field \"%s\" is invalid",
		"error.variant_expand_failed":        "Failed to expand variants",
		"error.variant_too_many":             "Variant types expand to more than %d variations",
		"error.variations_stale":             "Variations do not match the current attributes, regenerate them",
		"error.product_fetch_failed":         "Failed to load products",
		"error.product_create_failed":        "Failed to create product",
		"error.product_update_failed":        "Failed to update product",
		"error.product_delete_failed":        "Failed to delete product",
		"error.product_not_found":            "Product not found",
		"error.product_invalid":              "Product data is incomplete or invalid",
		"error.sku_not_found":                "SKU not found",
		"error.sku_update_failed":            "Failed to update SKU",
		"error.sku_code_conflict":            "SKU code conflict",
		"error.insufficient_stock":           "Insufficient stock",
		"error.stock_delta_invalid":          "Stock adjustment must be a non-zero integer",
		"error.stock_adjust_failed":          "Failed to adjust stock",
		"error.movement_fetch_failed":        "Failed to load stock movements",
		"error.draft_not_found":              "Draft not found",
		"error.draft_forbidden":              "This draft belongs to another admin",
		"error.draft_step_invalid":           "Invalid wizard step",
		"error.draft_incomplete":             "Step %s is incomplete: %s",
		"error.draft_incomplete_generic":     "Draft is incomplete",
		"error.draft_fetch_failed":           "Failed to load draft",
		"error.draft_save_failed":            "Failed to save draft",
		"error.draft_delete_failed":          "Failed to delete draft",
		"error.sale_fetch_failed":            "Failed to load sales",
		"error.sale_create_failed":           "Failed to record sale",
		"error.sale_not_found":               "Sale not found",
		"error.sale_invalid":                 "Sale data is invalid",
		"error.sale_channel_invalid":         "Unknown sales channel",
		"error.return_fetch_failed":          "Failed to load returns",
		"error.return_create_failed":         "Failed to create return",
		"error.return_update_failed":         "Failed to process return",
		"error.return_not_found":             "Return not found",
		"error.return_invalid":               "Return data is invalid",
		"error.return_quantity_exceeded":     "Return quantity exceeds the returnable quantity",
		"error.return_status_invalid":        "Return has already been processed",
		"error.return_condition_invalid":     "Unknown return condition",
		"error.analytics_fetch_failed":       "Failed to load analytics",
		"error.analytics_range_invalid":      "Invalid analytics range",
		"error.analytics_timezone_invalid":   "Invalid timezone",
		"error.analytics_cache_clear_failed": "Failed to clear analytics cache",
		"error.export_failed":                "Export failed",
		"error.file_missing":                 "No file was uploaded",
		"error.upload_failed":                "Upload failed",
		"error.upload_too_large":             "File is too large",
		"error.upload_type_invalid":          "Unsupported file type",
		"error.upload_image_too_large":       "Image dimensions are too large",
		"error.upload_image_invalid":         "Image could not be decoded",
		"error.settings_fetch_failed":        "Failed to load settings",
		"error.settings_save_failed":         "Failed to save settings",
		"error.settings_invalid":             "Invalid setting value",
	},
}
