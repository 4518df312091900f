package repositories

import (
	"context"
	"testing"
	"time"

	"altify/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AltTextUpdateRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       AltTextUpdateRepository
	shopDomain string
	context    context.Context
}

func (suite *AltTextUpdateRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAltTextUpdateRepo(mock)
	suite.shopDomain = "test-store.myshopify.com"
	suite.context = context.Background()
}

func (suite *AltTextUpdateRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAltTextUpdateRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AltTextUpdateRepoTestSuite))
}

func (suite *AltTextUpdateRepoTestSuite) TestCreate_WithTemplate() {
	templateID := uuid.New()
	update := &models.AltTextUpdate{
		ID:         uuid.New(),
		ShopDomain: suite.shopDomain,
		ProductID:  "gid://shopify/Product/1001",
		ImageID:    "gid://shopify/ProductImage/2001",
		TemplateID: &templateID,
		AltText:    "Widget – Acme",
	}

	suite.mock.ExpectExec(`
		INSERT INTO alt_text_updates \(id, shop_domain, product_id, image_id, template_id, alt_text, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\)\)
	`).WithArgs(update.ID, update.ShopDomain, update.ProductID, update.ImageID, update.TemplateID, update.AltText).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, update)
	assert.NoError(suite.T(), err)
}

func (suite *AltTextUpdateRepoTestSuite) TestCreate_ManualWriteHasNilTemplate() {
	update := &models.AltTextUpdate{
		ID:         uuid.New(),
		ShopDomain: suite.shopDomain,
		ProductID:  "1001",
		ImageID:    "2001",
		TemplateID: nil,
		AltText:    "",
	}

	suite.mock.ExpectExec(`
		INSERT INTO alt_text_updates \(id, shop_domain, product_id, image_id, template_id, alt_text, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\)\)
	`).WithArgs(update.ID, update.ShopDomain, update.ProductID, update.ImageID, (*uuid.UUID)(nil), update.AltText).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, update)
	assert.NoError(suite.T(), err)
}

func (suite *AltTextUpdateRepoTestSuite) TestListByShop_Success() {
	now := time.Now().UTC()
	templateID := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "shop_domain", "product_id", "image_id", "template_id", "alt_text", "created_at"}).
		AddRow(uuid.New(), suite.shopDomain, "1001", "2001", &templateID, "Widget – Acme", now).
		AddRow(uuid.New(), suite.shopDomain, "1001", "2002", (*uuid.UUID)(nil), "", now)

	suite.mock.ExpectQuery(`
		SELECT id, shop_domain, product_id, image_id, template_id, alt_text, created_at
		FROM alt_text_updates
		WHERE shop_domain = \$1
		ORDER BY created_at DESC
		LIMIT \$2 OFFSET \$3
	`).WithArgs(suite.shopDomain, 50, 0).
		WillReturnRows(rows)

	result, err := suite.repo.ListByShop(suite.context, suite.shopDomain, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.NotNil(suite.T(), result[0].TemplateID)
	assert.Nil(suite.T(), result[1].TemplateID, "manual writes carry no template id")
}

func (suite *AltTextUpdateRepoTestSuite) TestListByProduct_Success() {
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "shop_domain", "product_id", "image_id", "template_id", "alt_text", "created_at"}).
		AddRow(uuid.New(), suite.shopDomain, "1001", "2001", (*uuid.UUID)(nil), "alt", now)

	suite.mock.ExpectQuery(`
		SELECT id, shop_domain, product_id, image_id, template_id, alt_text, created_at
		FROM alt_text_updates
		WHERE shop_domain = \$1 AND product_id = \$2
		ORDER BY created_at DESC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.shopDomain, "1001", 50, 0).
		WillReturnRows(rows)

	result, err := suite.repo.ListByProduct(suite.context, suite.shopDomain, "1001", 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), "1001", result[0].ProductID)
}

func (suite *AltTextUpdateRepoTestSuite) TestCountByShop_Success() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM alt_text_updates WHERE shop_domain = \$1`).
		WithArgs(suite.shopDomain).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := suite.repo.CountByShop(suite.context, suite.shopDomain)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 42, count)
}
