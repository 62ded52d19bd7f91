package provider

import (
	"errors"
	"fmt"

	"github.com/stockdesk/internal/authz"
	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/queue"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"

	"gorm.io/gorm"
)

// Container 进程内共享的仓库与服务，handler 与 worker 都从这里取依赖
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	AdminRepo         repository.AdminRepository
	CategoryRepo      repository.CategoryRepository
	ProductRepo       repository.ProductRepository
	SKURepo           repository.ProductSKURepository
	StockMovementRepo repository.StockMovementRepository
	DraftRepo         repository.DraftRepository
	SaleRepo          repository.SaleRepository
	ReturnRepo        repository.ReturnRepository
	AnalyticsRepo     repository.AnalyticsRepository
	SettingRepo       repository.SettingRepository
	AccessAuditRepo   repository.AccessAuditRepository

	AuthzService       *authz.Service
	AuthService        *service.AuthService
	CaptchaService     *service.CaptchaService
	UploadService      *service.UploadService
	SettingService     *service.SettingService
	CategoryCatalog    *service.CategoryCatalog
	CategoryService    *service.CategoryService
	ProductService     *service.ProductService
	DraftService       *service.DraftService
	SaleService        *service.SaleService
	ReturnService      *service.ReturnService
	AnalyticsService   *service.AnalyticsService
	AccessAuditService *service.AccessAuditService
}

// NewContainer 需要 models.InitDB 已完成；Redis 与队列不可用时降级运行，RBAC 初始化失败则返回错误
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, DB: models.DB}
	if c.DB == nil {
		return nil, errors.New("provider: database not initialised")
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		}
		c.QueueClient = qc
	}

	c.wireRepositories()
	if err := c.wireServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wireRepositories() {
	db := c.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.SKURepo = repository.NewProductSKURepository(db)
	c.StockMovementRepo = repository.NewStockMovementRepository(db)
	c.DraftRepo = repository.NewDraftRepository(db)
	c.SaleRepo = repository.NewSaleRepository(db)
	c.ReturnRepo = repository.NewReturnRepository(db)
	c.AnalyticsRepo = repository.NewAnalyticsRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.AccessAuditRepo = repository.NewAccessAuditRepository(db)
}

func (c *Container) wireServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		return fmt.Errorf("provider: authz: %w", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return fmt.Errorf("provider: builtin roles: %w", err)
	}
	c.AuthzService = authzService

	// 后台保存过的验证码设置覆盖 config.yml
	c.SettingService = service.NewSettingService(c.SettingRepo)
	if stored, err := c.SettingService.GetCaptchaSetting(c.Config.Captcha); err != nil {
		logger.Warnw("provider_load_captcha_setting_failed", "error", err)
	} else {
		c.Config.Captcha = service.CaptchaSettingToConfig(stored, c.Config.Captcha)
	}

	inv := c.Config.Inventory
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	c.CategoryCatalog = service.NewCategoryCatalog(c.CategoryRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.CategoryCatalog)
	c.ProductService = service.NewProductService(c.ProductRepo, c.SKURepo, c.StockMovementRepo, c.CategoryCatalog, c.QueueClient, inv)
	c.DraftService = service.NewDraftService(c.DraftRepo, c.ProductService)
	c.SaleService = service.NewSaleService(c.SaleRepo, c.SKURepo, c.StockMovementRepo, c.QueueClient)
	c.ReturnService = service.NewReturnService(c.ReturnRepo, c.SaleRepo, c.SKURepo, c.StockMovementRepo, c.QueueClient)
	c.AnalyticsService = service.NewAnalyticsService(c.AnalyticsRepo, c.SKURepo, c.SettingService, c.Config.Analytics)
	c.AccessAuditService = service.NewAccessAuditService(c.AccessAuditRepo)
	return nil
}

// Close 依次释放队列客户端、Redis 与数据库连接
func (c *Container) Close() {
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
	if c.DB == nil {
		return
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warnw("provider_close_db_failed", "error", err)
	}
}
