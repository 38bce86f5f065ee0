package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopfront/internal/events"
	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/models"
	"github.com/Skotchmaster/shopfront/internal/search"
	"github.com/Skotchmaster/shopfront/internal/storage"
	"github.com/Skotchmaster/shopfront/internal/util"
)

const (
	sideEffectTimeout = 5 * time.Second

	// numeric(10,2) leaves eight digits before the point.
	maxPriceDigits   = 8
	minPriceExponent = -32
)

var (
	ErrSearchUnavailable = errors.New("search is not configured")

	maxPrice = decimal.New(1, 8).Sub(decimal.New(1, -2))
)

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	SaveProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

// ProductInput carries a create or update request. Price is the raw text the
// client sent. A nil ImageURL means the field was absent; a pointer to "" asks
// to clear the image.
type ProductInput struct {
	Name        string
	Price       string
	Description string
	ImageURL    *string
	Image       *storage.Upload
}

type ProductService struct {
	Repo     ProductRepo
	Images   storage.ImageStore
	Events   events.Publisher
	Index    search.Indexer
	Searcher Searcher

	locks keyLock
}

func NewProductService(r ProductRepo, images storage.ImageStore, pub events.Publisher, idx search.Indexer) *ProductService {
	if pub == nil {
		pub = events.Nop{}
	}
	if idx == nil {
		idx = search.Nop{}
	}
	return &ProductService{Repo: r, Images: images, Events: pub, Index: idx}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return prod, nil
}

func (s *ProductService) Search(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	if s.Searcher == nil {
		return 0, nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, invalid("q", "Search query is required")
	}
	from, limit := util.Calculate(page, size)
	if from+limit > util.MaxResultWindow {
		return 0, nil, invalid("page", "Page is out of range")
	}
	return s.Searcher.Search(ctx, query, from, limit)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	prod := &models.Product{}
	if err := in.apply(prod); err != nil {
		return nil, err
	}

	uploaded, err := s.store(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	switch {
	case uploaded != "":
		prod.ImageURL = &uploaded
	case in.ImageURL != nil && *in.ImageURL != "":
		prod.ImageURL = ptr(*in.ImageURL)
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		s.discard(ctx, uploaded)
		return nil, fmt.Errorf("create product: %w", err)
	}

	l.Info("product_created", "product_id", prod.ID)
	s.afterWrite(ctx, "product_created", prod)
	return prod, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.update", "product_id", id)

	unlock := s.locks.Lock(id)
	defer unlock()

	prod, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(prod); err != nil {
		return nil, err
	}
	previous := prod.Image()

	uploaded, err := s.store(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	switch {
	case uploaded != "":
		prod.ImageURL = &uploaded
	case in.ImageURL != nil && *in.ImageURL == "":
		prod.ImageURL = nil
	case in.ImageURL != nil:
		prod.ImageURL = ptr(*in.ImageURL)
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		s.discard(ctx, uploaded)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if previous != "" && previous != prod.Image() {
		s.discard(ctx, previous)
	}

	l.Info("product_updated")
	s.afterWrite(ctx, "product_updated", prod)
	return prod, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "product.delete", "product_id", id)

	unlock := s.locks.Lock(id)
	defer unlock()

	prod, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.discard(ctx, prod.Image())

	l.Info("product_deleted")

	sctx, cancel := sideEffectContext(ctx)
	defer cancel()
	key := strconv.FormatUint(uint64(id), 10)
	if err := s.Events.PublishEvent(sctx, events.TopicProducts, key, events.New("product_deleted", map[string]any{"product_id": id})); err != nil {
		l.Warn("product_event_error", "type", "product_deleted", "error", err)
	}
	if err := s.Index.DeleteProduct(sctx, id); err != nil {
		l.Warn("product_index_error", "op", "delete", "error", err)
	}
	return nil
}

// store validates and saves an upload, returning "" when there is none.
func (s *ProductService) store(ctx context.Context, up *storage.Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	if err := storage.Validate(*up); err != nil {
		return "", imageError(up.Field, err)
	}
	url, err := s.Images.Save(ctx, *up)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", imageError(up.Field, err)
		}
		return "", fmt.Errorf("store image: %w", err)
	}
	return url, nil
}

// discard removes an image the store owns. Failures are only logged.
func (s *ProductService) discard(ctx context.Context, imageURL string) {
	if imageURL == "" || !s.Images.Owns(imageURL) {
		return
	}
	if err := s.Images.Remove(ctx, imageURL); err != nil {
		logging.FromContext(ctx).Warn("image_remove_error", "image_url", imageURL, "error", err)
	}
}

func (s *ProductService) afterWrite(ctx context.Context, typ string, prod *models.Product) {
	l := logging.FromContext(ctx)
	sctx, cancel := sideEffectContext(ctx)
	defer cancel()

	ev := events.New(typ, map[string]any{
		"product_id": prod.ID,
		"name":       prod.Name,
		"price":      prod.Price.StringFixed(2),
		"image_url":  prod.Image(),
	})
	if err := s.Events.PublishEvent(sctx, events.TopicProducts, strconv.FormatUint(uint64(prod.ID), 10), ev); err != nil {
		l.Warn("product_event_error", "type", typ, "product_id", prod.ID, "error", err)
	}
	if err := s.Index.IndexProduct(sctx, prod); err != nil {
		l.Warn("product_index_error", "op", "index", "product_id", prod.ID, "error", err)
	}
}

// apply validates the scalar fields and writes them onto prod.
func (in ProductInput) apply(prod *models.Product) error {
	name := strings.TrimSpace(in.Name)
	raw := strings.TrimSpace(in.Price)
	if name == "" || raw == "" {
		field := "name"
		if name != "" {
			field = "price"
		}
		return invalid(field, "Name and price are required")
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return invalid("price", "Price must be a valid number")
	}
	if price.IsNegative() {
		return invalid("price", "Price cannot be negative")
	}
	// Round rescales through big.Int, so oversized exponents are rejected first.
	switch {
	case price.IsZero():
		price = decimal.Zero
	case integerDigits(price) > maxPriceDigits:
		return invalid("price", "Price is too large")
	case price.Exponent() < minPriceExponent:
		return invalid("price", "Price must be a valid number")
	}
	price = price.Round(2)
	if price.GreaterThan(maxPrice) {
		return invalid("price", "Price is too large")
	}

	prod.Name = name
	prod.Price = price
	prod.Description = nil
	if d := strings.TrimSpace(in.Description); d != "" {
		prod.Description = &d
	}
	return nil
}

// integerDigits counts the digits left of the decimal point of a non-zero d.
func integerDigits(d decimal.Decimal) int {
	return len(d.Coefficient().Text(10)) + int(d.Exponent())
}

func imageError(field string, err error) error {
	if field == "" {
		field = "image"
	}
	if errors.Is(err, storage.ErrTooLarge) {
		return invalid(field, "Image must be 5 MB or smaller")
	}
	return invalid(field, "Only image files are allowed")
}

func sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

func ptr(s string) *string { return &s }
