package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"altify/internal/caching"
	"altify/internal/models"
	"altify/internal/render"
	"altify/internal/repositories"
	"altify/internal/shopify"

	"github.com/google/uuid"
)

const (
	productSnapshotTTL = SessionTTL
	coverageTTL        = 15 * time.Minute
)

var ErrProductNotFound = errors.New("product not found")

type ProductService interface {
	// Fetch pulls the product catalog from the store and replaces the
	// session's snapshot. Everything else reads from that snapshot.
	Fetch(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error)
	List(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, sessionID uuid.UUID, query string, limit, offset int) ([]*models.Product, error)
	GetByID(ctx context.Context, sessionID uuid.UUID, productID string) (*models.Product, error)
	Sync(ctx context.Context, sessionID uuid.UUID, productID string) (*models.Product, error)
	RecentProducts(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error)
	Coverage(ctx context.Context, sessionID uuid.UUID) (*models.CoverageReport, error)
	RefreshCoverage(ctx context.Context, sessionID uuid.UUID) (*models.CoverageReport, error)

	ApplyTemplate(ctx context.Context, sessionID uuid.UUID, productID string, templateID uuid.UUID) (*models.ApplyResult, error)
	ApplyTemplateAll(ctx context.Context, sessionID uuid.UUID, templateID uuid.UUID) ([]*models.ApplyResult, error)
	SetImageAlt(ctx context.Context, sessionID uuid.UUID, productID, imageID, altText string) error
	ClearImageAlt(ctx context.Context, sessionID uuid.UUID, productID, imageID string) error
	ClearProductAlt(ctx context.Context, sessionID uuid.UUID, productID string) (*models.ApplyResult, error)

	UpdateHistory(ctx context.Context, sessionID uuid.UUID, productID string, limit, offset int) ([]*models.AltTextUpdate, error)
}

type productService struct {
	shopifyClient   shopify.Client
	sessionService  SessionService
	templateService TemplateService
	cacheService    caching.CacheService
	updateRepo      repositories.AltTextUpdateRepository
}

func NewProductService(shopifyClient shopify.Client, sessionService SessionService, templateService TemplateService, cacheService caching.CacheService, updateRepo repositories.AltTextUpdateRepository) ProductService {
	return &productService{
		shopifyClient:   shopifyClient,
		sessionService:  sessionService,
		templateService: templateService,
		cacheService:    cacheService,
		updateRepo:      updateRepo,
	}
}

func (s *productService) Fetch(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error) {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	creds := shopify.Credentials{ShopDomain: session.ShopDomain, AccessToken: session.AccessToken}
	products, err := s.shopifyClient.ListProducts(ctx, creds)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		product.Store = session.ShopName
	}

	if cacheErr := s.cacheService.SetProducts(ctx, sessionID, products, productSnapshotTTL); cacheErr != nil {
		return nil, fmt.Errorf("failed to cache product snapshot: %w", cacheErr)
	}

	// Coverage is computed from the snapshot, so the cached report is stale
	// the moment a new snapshot lands.
	if _, err := s.refreshCoverage(ctx, sessionID, products); err != nil {
		log.Printf("WARN: coverage refresh after fetch failed: %v", err)
	}

	return products, nil
}

func (s *productService) snapshot(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error) {
	products, err := s.cacheService.GetProducts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		// Nothing cached yet: fetch on first use.
		return s.Fetch(ctx, sessionID)
	}
	return products, nil
}

func (s *productService) List(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	products, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if offset >= len(products) {
		return []*models.Product{}, nil
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end], nil
}

func (s *productService) Search(ctx context.Context, sessionID uuid.UUID, query string, limit, offset int) ([]*models.Product, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return s.List(ctx, sessionID, limit, offset)
	}

	products, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var matched []*models.Product
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Title), query) ||
			strings.Contains(strings.ToLower(product.Vendor), query) ||
			strings.Contains(strings.ToLower(product.ProductType), query) {
			matched = append(matched, product)
		}
	}

	if offset >= len(matched) {
		return []*models.Product{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *productService) GetByID(ctx context.Context, sessionID uuid.UUID, productID string) (*models.Product, error) {
	products, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		if product.ID == productID {
			if recentErr := s.cacheService.PushRecentProduct(ctx, sessionID, productID); recentErr != nil {
				log.Printf("WARN: failed to record recent product %s: %v", productID, recentErr)
			}
			return product, nil
		}
	}
	return nil, ErrProductNotFound
}

// Sync re-fetches a single product from the store and splices it into the
// cached snapshot.
func (s *productService) Sync(ctx context.Context, sessionID uuid.UUID, productID string) (*models.Product, error) {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	creds := shopify.Credentials{ShopDomain: session.ShopDomain, AccessToken: session.AccessToken}
	fetched, err := s.shopifyClient.ListProductsByIDs(ctx, creds, []string{productID})
	if err != nil {
		return nil, err
	}
	if len(fetched) == 0 {
		return nil, ErrProductNotFound
	}

	fresh := fetched[0]
	fresh.Store = session.ShopName

	products, err := s.cacheService.GetProducts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	replaced := false
	for i, product := range products {
		if product.ID == fresh.ID {
			products[i] = fresh
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, fresh)
	}
	if cacheErr := s.cacheService.SetProducts(ctx, sessionID, products, productSnapshotTTL); cacheErr != nil {
		return nil, fmt.Errorf("failed to update product snapshot: %w", cacheErr)
	}

	return fresh, nil
}

func (s *productService) RecentProducts(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error) {
	ids, err := s.cacheService.GetRecentProducts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Product{}, nil
	}

	products, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	recent := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			recent = append(recent, product)
		}
	}
	return recent, nil
}

func (s *productService) Coverage(ctx context.Context, sessionID uuid.UUID) (*models.CoverageReport, error) {
	report, err := s.cacheService.GetCoverage(ctx, sessionID)
	if err != nil {
		log.Printf("WARN: coverage cache read failed: %v", err)
	}
	if report != nil {
		return report, nil
	}

	products, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.refreshCoverage(ctx, sessionID, products)
}

// RefreshCoverage recomputes the coverage report from the cached snapshot
// without fetching. Used by the background scheduler.
func (s *productService) RefreshCoverage(ctx context.Context, sessionID uuid.UUID) (*models.CoverageReport, error) {
	products, err := s.cacheService.GetProducts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		return nil, nil
	}
	return s.refreshCoverage(ctx, sessionID, products)
}

func (s *productService) refreshCoverage(ctx context.Context, sessionID uuid.UUID, products []*models.Product) (*models.CoverageReport, error) {
	report := &models.CoverageReport{
		Products:    len(products),
		GeneratedAt: time.Now().UTC(),
	}
	for _, product := range products {
		withAlt, total := product.AltTextCounts()
		report.Images += total
		report.ImagesWithAlt += withAlt
	}
	if report.Images > 0 {
		report.Coverage = float64(report.ImagesWithAlt) / float64(report.Images) * 100
	}

	if cacheErr := s.cacheService.SetCoverage(ctx, sessionID, report, coverageTTL); cacheErr != nil {
		log.Printf("WARN: failed to cache coverage report: %v", cacheErr)
	}
	return report, nil
}

// ApplyTemplate renders the template once per product and writes the result
// to every image. One write per image, no retries.
func (s *productService) ApplyTemplate(ctx context.Context, sessionID uuid.UUID, productID string, templateID uuid.UUID) (*models.ApplyResult, error) {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	template, err := s.templateForShop(ctx, session.ShopDomain, templateID)
	if err != nil {
		return nil, err
	}

	product, err := s.GetByID(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}

	result := s.applyToProduct(ctx, session, product, template)

	products, snapErr := s.cacheService.GetProducts(ctx, sessionID)
	if snapErr == nil && products != nil {
		for i, cached := range products {
			if cached.ID == product.ID {
				products[i] = product
				break
			}
		}
		if cacheErr := s.cacheService.SetProducts(ctx, sessionID, products, productSnapshotTTL); cacheErr != nil {
			log.Printf("WARN: failed to persist snapshot after apply: %v", cacheErr)
		}
	}
	if _, covErr := s.RefreshCoverage(ctx, sessionID); covErr != nil {
		log.Printf("WARN: coverage refresh after apply failed: %v", covErr)
	}

	return result, nil
}

// ApplyTemplateAll applies the template to every product in the snapshot.
// Each image is written exactly once; a rate-limited call stops the run.
func (s *productService) ApplyTemplateAll(ctx context.Context, sessionID uuid.UUID, templateID uuid.UUID) ([]*models.ApplyResult, error) {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	template, err := s.templateForShop(ctx, session.ShopDomain, templateID)
	if err != nil {
		return nil, err
	}

	products, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	results := make([]*models.ApplyResult, 0, len(products))
	for _, product := range products {
		result := s.applyToProduct(ctx, session, product, template)
		results = append(results, result)
		if result.RateLimited {
			break
		}
	}

	if cacheErr := s.cacheService.SetProducts(ctx, sessionID, products, productSnapshotTTL); cacheErr != nil {
		log.Printf("WARN: failed to persist snapshot after bulk apply: %v", cacheErr)
	}
	if _, covErr := s.RefreshCoverage(ctx, sessionID); covErr != nil {
		log.Printf("WARN: coverage refresh after bulk apply failed: %v", covErr)
	}

	return results, nil
}

func (s *productService) applyToProduct(ctx context.Context, session *models.Session, product *models.Product, template *models.Template) *models.ApplyResult {
	return s.writeAltToImages(ctx, session, product, render.Render(template.Body, product), &template.ID)
}

func (s *productService) writeAltToImages(ctx context.Context, session *models.Session, product *models.Product, rendered string, templateID *uuid.UUID) *models.ApplyResult {
	result := &models.ApplyResult{
		ProductID:   product.ID,
		TemplateID:  templateID,
		RenderedAlt: rendered,
		TotalImages: len(product.Images),
		Items:       []*models.ApplyItem{},
	}

	creds := shopify.Credentials{ShopDomain: session.ShopDomain, AccessToken: session.AccessToken}
	for _, image := range product.Images {
		err := s.shopifyClient.UpdateImageAltText(ctx, creds, product.ID, image.ID, rendered)
		if err != nil {
			result.Failed++
			errMsg := err.Error()
			result.Items = append(result.Items, &models.ApplyItem{
				ImageID: image.ID,
				Status:  "failed",
				Error:   &errMsg,
			})
			if shopify.IsRateLimit(err) {
				result.RateLimited = true
				break
			}
			continue
		}

		image.Alt = rendered
		image.AppliedTemplateID = templateID
		result.Updated++
		result.Items = append(result.Items, &models.ApplyItem{
			ImageID: image.ID,
			Status:  "success",
		})

		s.recordUpdate(ctx, session.ShopDomain, product.ID, image.ID, templateID, rendered)
	}

	switch {
	case result.Failed == 0:
		result.Status = "completed"
	case result.Updated > 0:
		result.Status = "partial"
	default:
		result.Status = "failed"
	}
	return result
}

func (s *productService) SetImageAlt(ctx context.Context, sessionID uuid.UUID, productID, imageID, altText string) error {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	product, err := s.GetByID(ctx, sessionID, productID)
	if err != nil {
		return err
	}
	image := product.ImageByID(imageID)
	if image == nil {
		return ErrProductNotFound
	}

	creds := shopify.Credentials{ShopDomain: session.ShopDomain, AccessToken: session.AccessToken}
	if err := s.shopifyClient.UpdateImageAltText(ctx, creds, productID, imageID, altText); err != nil {
		return err
	}

	image.Alt = altText
	image.AppliedTemplateID = nil
	s.recordUpdate(ctx, session.ShopDomain, productID, imageID, nil, altText)

	products, snapErr := s.cacheService.GetProducts(ctx, sessionID)
	if snapErr == nil && products != nil {
		for i, cached := range products {
			if cached.ID == productID {
				products[i] = product
				break
			}
		}
		if cacheErr := s.cacheService.SetProducts(ctx, sessionID, products, productSnapshotTTL); cacheErr != nil {
			log.Printf("WARN: failed to persist snapshot after alt update: %v", cacheErr)
		}
	}
	if _, covErr := s.RefreshCoverage(ctx, sessionID); covErr != nil {
		log.Printf("WARN: coverage refresh after alt update failed: %v", covErr)
	}

	return nil
}

// ClearImageAlt writes an empty alt text, which removes it on the store.
func (s *productService) ClearImageAlt(ctx context.Context, sessionID uuid.UUID, productID, imageID string) error {
	return s.SetImageAlt(ctx, sessionID, productID, imageID, "")
}

// ClearProductAlt clears the alt text on every image of a product, one
// write per image.
func (s *productService) ClearProductAlt(ctx context.Context, sessionID uuid.UUID, productID string) (*models.ApplyResult, error) {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.GetByID(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}

	result := s.writeAltToImages(ctx, session, product, "", nil)

	products, snapErr := s.cacheService.GetProducts(ctx, sessionID)
	if snapErr == nil && products != nil {
		for i, cached := range products {
			if cached.ID == product.ID {
				products[i] = product
				break
			}
		}
		if cacheErr := s.cacheService.SetProducts(ctx, sessionID, products, productSnapshotTTL); cacheErr != nil {
			log.Printf("WARN: failed to persist snapshot after clear: %v", cacheErr)
		}
	}
	if _, covErr := s.RefreshCoverage(ctx, sessionID); covErr != nil {
		log.Printf("WARN: coverage refresh after clear failed: %v", covErr)
	}

	return result, nil
}

func (s *productService) recordUpdate(ctx context.Context, shopDomain, productID, imageID string, templateID *uuid.UUID, altText string) {
	update := &models.AltTextUpdate{
		ID:         uuid.New(),
		ShopDomain: shopDomain,
		ProductID:  productID,
		ImageID:    imageID,
		TemplateID: templateID,
		AltText:    altText,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.updateRepo.Create(ctx, update); err != nil {
		// The write to the store already happened; a lost history row is
		// logged, not surfaced.
		log.Printf("WARN: failed to record alt text update for image %s: %v", imageID, err)
	}
}

// UpdateHistory lists logged alt text writes for the shop, optionally
// narrowed to one product.
func (s *productService) UpdateHistory(ctx context.Context, sessionID uuid.UUID, productID string, limit, offset int) ([]*models.AltTextUpdate, error) {
	session, err := s.sessionService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if productID != "" {
		return s.updateRepo.ListByProduct(ctx, session.ShopDomain, productID, limit, offset)
	}
	return s.updateRepo.ListByShop(ctx, session.ShopDomain, limit, offset)
}

func (s *productService) templateForShop(ctx context.Context, shopDomain string, templateID uuid.UUID) (*models.Template, error) {
	return s.templateService.GetByID(ctx, shopDomain, templateID)
}
