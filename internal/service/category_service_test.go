package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedCategoryRepository armed 时第一次 List 读完数据后等待 release，用来制造回源期间的并发修改
type gatedCategoryRepository struct {
	repository.CategoryRepository
	lists   int32
	armed   int32
	started chan struct{}
	release chan struct{}
}

func (r *gatedCategoryRepository) List() ([]models.Category, error) {
	atomic.AddInt32(&r.lists, 1)
	categories, err := r.CategoryRepository.List()
	if atomic.CompareAndSwapInt32(&r.armed, 1, 0) {
		close(r.started)
		<-r.release
	}
	return categories, err
}

func TestCategoryCatalogLayers(t *testing.T) {
	f := newInventoryFixture(t)
	repo := &gatedCategoryRepository{CategoryRepository: f.categories}
	catalog := NewCategoryCatalog(repo)
	ctx := context.Background()

	explicit := []models.Category{{ID: 42, Slug: "given"}}
	got, err := catalog.Resolve(ctx, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
	assert.Zero(t, atomic.LoadInt32(&repo.lists))

	first, err := catalog.Resolve(ctx, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].NameJSON["zh-CN"] = "changed"

	second, err := catalog.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "服装", second[0].NameJSON["zh-CN"])
	assert.EqualValues(t, 1, atomic.LoadInt32(&repo.lists))

	found, err := catalog.Lookup(ctx, f.category.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "apparel", found.Slug)
	missing, err := catalog.Lookup(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	catalog.Invalidate(ctx)
	_, err = catalog.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&repo.lists))
}

func TestCategoryCatalogDropsFetchStartedBeforeInvalidate(t *testing.T) {
	f := newInventoryFixture(t)
	repo := &gatedCategoryRepository{
		CategoryRepository: f.categories,
		armed:              1,
		started:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	catalog := NewCategoryCatalog(repo)
	ctx := context.Background()

	done := make(chan []models.Category)
	go func() {
		categories, _ := catalog.Resolve(ctx, nil)
		done <- categories
	}()
	<-repo.started

	added := models.Category{Slug: "footwear", NameJSON: models.JSON{"zh-CN": "鞋履"}, IsActive: true}
	require.NoError(t, f.categories.Create(&added))
	catalog.Invalidate(ctx)
	close(repo.release)
	stale := <-done
	assert.Len(t, stale, 1)

	fresh, err := catalog.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&repo.lists))
}
