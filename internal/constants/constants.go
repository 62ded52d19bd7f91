package constants

// 库存流水类型常量
const (
	StockMovementInitial    = "initial"    // 建档初始库存
	StockMovementSale       = "sale"       // 销售出库
	StockMovementReturn     = "return"     // 退货入库
	StockMovementAdjustment = "adjustment" // 人工调整
	StockMovementRegenerate = "regenerate" // 变体重建清零
)

// 销售渠道常量
const (
	SaleChannelPOS       = "pos"
	SaleChannelOnline    = "online"
	SaleChannelWholesale = "wholesale"
)

// 销售记录状态常量
const (
	SaleStatusCompleted         = "completed"
	SaleStatusPartiallyReturned = "partially_returned"
	SaleStatusReturned          = "returned"
)

// 退货状态常量
const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusRejected = "rejected"
)

// 退货商品状况常量
const (
	ReturnConditionResellable = "resellable"
	ReturnConditionDamaged    = "damaged"
)

// 库存状态筛选常量
const (
	StockStatusLow = "low"
	StockStatusOut = "out"
	StockStatusIn  = "in"
)

// 分析时间范围常量
const (
	AnalyticsRangeToday  = "today"
	AnalyticsRange7Days  = "7d"
	AnalyticsRange30Days = "30d"
	AnalyticsRangeCustom = "custom"
)

// ABC 分类常量
const (
	ABCClassA = "A"
	ABCClassB = "B"
	ABCClassC = "C"
)

// 验证码场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 队列与任务常量
const (
	QueueDefault              = "default"
	QueueCritical             = "critical"
	TaskLowStockCheck         = "inventory:low_stock_check"
	TaskAnalyticsWarm         = "analytics:warm"
	TaskDraftPurge            = "draft:purge"
	DefaultDraftRetentionDays = 30
)

// 系统设置键常量
const (
	SettingKeyAnalyticsAlert = "analytics_alert"
	SettingKeyCaptcha        = "captcha"
)
