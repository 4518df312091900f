package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"altify/internal/models"
	"altify/internal/render"
	"altify/internal/repositories"

	"github.com/google/uuid"
)

var ErrTemplateNotFound = errors.New("template not found")

type TemplateService interface {
	Create(ctx context.Context, shopDomain, name, body string) (*models.Template, error)
	GetByID(ctx context.Context, shopDomain string, id uuid.UUID) (*models.Template, error)
	Update(ctx context.Context, shopDomain string, id uuid.UUID, name, body string) (*models.Template, error)
	Delete(ctx context.Context, shopDomain string, id uuid.UUID) error
	List(ctx context.Context, shopDomain string, limit, offset int) ([]*models.Template, error)
	Preview(ctx context.Context, shopDomain string, id uuid.UUID, product *models.Product) (string, error)
	Tokens() []string
}

type templateService struct {
	templateRepo repositories.TemplateRepository
}

func NewTemplateService(templateRepo repositories.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) Create(ctx context.Context, shopDomain, name, body string) (*models.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("template name is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("template body is required")
	}

	existing, err := s.templateRepo.GetByName(ctx, shopDomain, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("template %q already exists", name)
	}

	template := &models.Template{
		ID:         uuid.New(),
		ShopDomain: shopDomain,
		Name:       name,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) GetByID(ctx context.Context, shopDomain string, id uuid.UUID) (*models.Template, error) {
	template, err := s.templateRepo.GetByID(ctx, shopDomain, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

func (s *templateService) Update(ctx context.Context, shopDomain string, id uuid.UUID, name, body string) (*models.Template, error) {
	template, err := s.GetByID(ctx, shopDomain, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		template.Name = name
	}
	if strings.TrimSpace(body) != "" {
		template.Body = body
	}
	template.UpdatedAt = time.Now().UTC()

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) Delete(ctx context.Context, shopDomain string, id uuid.UUID) error {
	return s.templateRepo.Delete(ctx, shopDomain, id)
}

func (s *templateService) List(ctx context.Context, shopDomain string, limit, offset int) ([]*models.Template, error) {
	return s.templateRepo.List(ctx, shopDomain, limit, offset)
}

// Preview renders the template against a product without writing anything.
func (s *templateService) Preview(ctx context.Context, shopDomain string, id uuid.UUID, product *models.Product) (string, error) {
	template, err := s.GetByID(ctx, shopDomain, id)
	if err != nil {
		return "", err
	}
	return render.Render(template.Body, product), nil
}

func (s *templateService) Tokens() []string {
	return render.Tokens()
}
