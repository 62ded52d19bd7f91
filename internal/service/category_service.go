package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"

	"golang.org/x/sync/singleflight"
)

const categoryCatalogTTL = 10 * time.Minute

// CategoryCatalog 分类参考数据缓存
// 查找顺序：调用方显式传入 > 进程内快照 > Redis > 数据库（singleflight 合并并发回源）
type CategoryCatalog struct {
	repo  repository.CategoryRepository
	ttl   time.Duration
	group singleflight.Group

	mu         sync.RWMutex
	snapshot   []models.Category
	loadedAt   time.Time
	generation uint64 // 每次 Invalidate 递增，旧代次的回源结果不再写入缓存
}

// NewCategoryCatalog 创建分类缓存
func NewCategoryCatalog(repo repository.CategoryRepository) *CategoryCatalog {
	return &CategoryCatalog{repo: repo, ttl: categoryCatalogTTL}
}

// Resolve 解析分类列表；explicit 非 nil 时直接使用
func (c *CategoryCatalog) Resolve(ctx context.Context, explicit []models.Category) ([]models.Category, error) {
	if explicit != nil {
		return explicit, nil
	}
	cached, gen, ok := c.fromMemory()
	if ok {
		return cached, nil
	}

	var fromRedis []models.Category
	if hit, err := cache.GetJSON(ctx, cache.CategoryAllKey, &fromRedis); err != nil {
		logger.Warnw("category_catalog_redis_get_failed", "error", err)
	} else if hit {
		c.store(fromRedis, gen)
		return cloneCategories(fromRedis), nil
	}

	flight := cache.CategoryAllKey + "#" + strconv.FormatUint(gen, 10)
	value, err, _ := c.group.Do(flight, func() (interface{}, error) {
		categories, err := c.repo.List()
		if err != nil {
			return nil, err
		}
		if categories == nil {
			categories = []models.Category{}
		}
		if !c.store(categories, gen) {
			return categories, nil
		}
		if err := cache.SetJSON(ctx, cache.CategoryAllKey, categories, c.ttl); err != nil {
			logger.Warnw("category_catalog_redis_set_failed", "error", err)
		}
		if c.currentGeneration() != gen {
			if err := cache.Del(ctx, cache.CategoryAllKey); err != nil {
				logger.Warnw("category_catalog_redis_del_failed", "error", err)
			}
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCategories(value.([]models.Category)), nil
}

// Lookup 通过缓存层查找单个分类，不存在时返回 nil
func (c *CategoryCatalog) Lookup(ctx context.Context, id uint) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}
	categories, err := c.Resolve(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			found := categories[i]
			return &found, nil
		}
	}
	return nil, nil
}

// Invalidate 清空进程内与 Redis 两级缓存
func (c *CategoryCatalog) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.snapshot = nil
	c.loadedAt = time.Time{}
	c.generation++
	c.mu.Unlock()
	if err := cache.Del(ctx, cache.CategoryAllKey); err != nil {
		logger.Warnw("category_catalog_redis_del_failed", "error", err)
	}
}

func (c *CategoryCatalog) fromMemory() ([]models.Category, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil || time.Since(c.loadedAt) > c.ttl {
		return nil, c.generation, false
	}
	return cloneCategories(c.snapshot), c.generation, true
}

func (c *CategoryCatalog) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// store 仅当读取时的代次仍是当前代次才写入快照
func (c *CategoryCatalog) store(categories []models.Category, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.snapshot = cloneCategories(categories)
	c.loadedAt = time.Now()
	return true
}

func cloneCategories(src []models.Category) []models.Category {
	if src == nil {
		return nil
	}
	out := make([]models.Category, len(src))
	copy(out, src)
	for i := range out {
		if src[i].NameJSON != nil {
			name := make(models.JSON, len(src[i].NameJSON))
			for k, v := range src[i].NameJSON {
				name[k] = v
			}
			out[i].NameJSON = name
		}
	}
	return out
}

// CategoryService 分类业务服务
type CategoryService struct {
	repo    repository.CategoryRepository
	catalog *CategoryCatalog
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository, catalog *CategoryCatalog) *CategoryService {
	if catalog == nil {
		catalog = NewCategoryCatalog(repo)
	}
	return &CategoryService{repo: repo, catalog: catalog}
}

// Catalog 返回分类缓存
func (s *CategoryService) Catalog() *CategoryCatalog {
	return s.catalog
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Slug      string
	NameJSON  map[string]interface{}
	Icon      string
	SortOrder int
	IsActive  *bool
}

// List 获取分类列表（走缓存）
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.catalog.Resolve(ctx, nil)
}

// Search 按关键字搜索分类（直接查库）
func (s *CategoryService) Search(keyword string) ([]models.Category, error) {
	return s.repo.Search(keyword)
}

// Get 获取分类
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	slug, err := normalizeCategoryInput(&input)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category := models.Category{
		Slug:      slug,
		NameJSON:  models.JSON(input.NameJSON),
		Icon:      strings.TrimSpace(input.Icon),
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(ctx context.Context, id uint, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	slug, err := normalizeCategoryInput(&input)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category.Slug = slug
	category.NameJSON = models.JSON(input.NameJSON)
	category.Icon = strings.TrimSpace(input.Icon)
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return category, nil
}

// Delete 删除分类，仍有商品引用时拒绝
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

func normalizeCategoryInput(input *CreateCategoryInput) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" {
		return "", ErrInvalidInput
	}
	hasName := false
	for _, v := range input.NameJSON {
		if text, ok := v.(string); ok && strings.TrimSpace(text) != "" {
			hasName = true
			break
		}
	}
	if !hasName {
		return "", ErrInvalidInput
	}
	return slug, nil
}
