package services

import (
	"context"
	"testing"

	"altify/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, shopDomain string, id uuid.UUID) (*models.Template, error) {
	args := m.Called(ctx, shopDomain, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) GetByName(ctx context.Context, shopDomain, name string) (*models.Template, error) {
	args := m.Called(ctx, shopDomain, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) Update(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, shopDomain string, id uuid.UUID) error {
	args := m.Called(ctx, shopDomain, id)
	return args.Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context, shopDomain string, limit, offset int) ([]*models.Template, error) {
	args := m.Called(ctx, shopDomain, limit, offset)
	return args.Get(0).([]*models.Template), args.Error(1)
}

type TemplateServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockTemplateRepository
	service    TemplateService
	shopDomain string
}

func (suite *TemplateServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockTemplateRepository{}
	suite.service = NewTemplateService(suite.mockRepo)
	suite.shopDomain = "test-store.myshopify.com"
}

func (suite *TemplateServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestTemplateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TemplateServiceTestSuite))
}

func (suite *TemplateServiceTestSuite) TestCreate_Success() {
	suite.mockRepo.On("GetByName", mock.Anything, suite.shopDomain, "default").Return(nil, nil).Once()
	suite.mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Template")).Return(nil).Once()

	template, err := suite.service.Create(context.Background(), suite.shopDomain, "  default  ", "{title} – {vendor}")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "default", template.Name, "name is trimmed")
	assert.Equal(suite.T(), suite.shopDomain, template.ShopDomain)
	assert.NotEqual(suite.T(), uuid.Nil, template.ID)
}

func (suite *TemplateServiceTestSuite) TestCreate_DuplicateName() {
	existing := &models.Template{ID: uuid.New(), ShopDomain: suite.shopDomain, Name: "default"}
	suite.mockRepo.On("GetByName", mock.Anything, suite.shopDomain, "default").Return(existing, nil).Once()

	_, err := suite.service.Create(context.Background(), suite.shopDomain, "default", "{title}")

	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "already exists")
}

func (suite *TemplateServiceTestSuite) TestCreate_EmptyNameRejected() {
	_, err := suite.service.Create(context.Background(), suite.shopDomain, "   ", "{title}")
	assert.Error(suite.T(), err)
}

func (suite *TemplateServiceTestSuite) TestCreate_EmptyBodyRejected() {
	_, err := suite.service.Create(context.Background(), suite.shopDomain, "default", "  ")
	assert.Error(suite.T(), err)
}

func (suite *TemplateServiceTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", mock.Anything, suite.shopDomain, id).Return(nil, nil).Once()

	_, err := suite.service.GetByID(context.Background(), suite.shopDomain, id)

	assert.ErrorIs(suite.T(), err, ErrTemplateNotFound)
}

func (suite *TemplateServiceTestSuite) TestUpdate_KeepsFieldsWhenBlank() {
	id := uuid.New()
	existing := &models.Template{
		ID:         id,
		ShopDomain: suite.shopDomain,
		Name:       "default",
		Body:       "{title}",
	}
	suite.mockRepo.On("GetByID", mock.Anything, suite.shopDomain, id).Return(existing, nil).Once()
	suite.mockRepo.On("Update", mock.Anything, existing).Return(nil).Once()

	updated, err := suite.service.Update(context.Background(), suite.shopDomain, id, "", "{title} – {vendor}")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "default", updated.Name, "blank name keeps the old one")
	assert.Equal(suite.T(), "{title} – {vendor}", updated.Body)
}

func (suite *TemplateServiceTestSuite) TestPreview_RendersWithoutWriting() {
	id := uuid.New()
	template := &models.Template{
		ID:         id,
		ShopDomain: suite.shopDomain,
		Name:       "default",
		Body:       "{title} – {vendor}",
	}
	product := &models.Product{Title: "Widget", Vendor: "Acme"}

	suite.mockRepo.On("GetByID", mock.Anything, suite.shopDomain, id).Return(template, nil).Once()

	preview, err := suite.service.Preview(context.Background(), suite.shopDomain, id, product)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Widget – Acme", preview)
}

func (suite *TemplateServiceTestSuite) TestTokens_Exposed() {
	tokens := suite.service.Tokens()
	assert.Contains(suite.T(), tokens, "{title}")
	assert.Contains(suite.T(), tokens, "{vendor}")
}
