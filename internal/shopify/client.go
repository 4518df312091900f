package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"

	"altify/internal/models"
)

const (
	// APIVersion is the Shopify Admin API version every request targets.
	APIVersion = "2023-10"

	// MaxAltTextLength is Shopify's limit on image alt text.
	MaxAltTextLength = 512

	// DefaultTimeout bounds each Admin API call.
	DefaultTimeout = 15 * time.Second

	productPageSize = 50
	imagePageSize   = 20
	variantPageSize = 10
)

// Credentials identifies a store for one session. Both fields must be
// present before any API call is attempted.
type Credentials struct {
	ShopDomain  string
	AccessToken string
}

func (c Credentials) Valid() bool {
	return c.ShopDomain != "" && c.AccessToken != ""
}

// Shop is the subset of the shop resource used by the connect flow.
type Shop struct {
	Name   string `json:"name"`
	Domain string `json:"myshopify_domain"`
	Email  string `json:"email"`
}

// Client issues authenticated requests to the Shopify Admin API. Each call
// is independent and at-most-once; setting the same alt text twice is a
// no-op on the remote end.
type Client interface {
	GetShop(ctx context.Context, creds Credentials) (*Shop, error)
	ListProducts(ctx context.Context, creds Credentials) ([]*models.Product, error)
	ListProductsByIDs(ctx context.Context, creds Credentials, ids []string) ([]*models.Product, error)
	UpdateImageAltText(ctx context.Context, creds Credentials, productID, imageID, altText string) error
}

type adminClient struct {
	httpClient *http.Client

	// baseURL overrides the https://{shop-domain} origin. Empty in
	// production; set by tests to point at a local server.
	baseURL string
}

// NewAdminClient creates an Admin API client with the given per-request
// timeout.
func NewAdminClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &adminClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NormalizeShopDomain turns operator input like "https://my-store" or
// "my-store" into "my-store.myshopify.com".
func NormalizeShopDomain(raw string) string {
	domain := strings.TrimSpace(raw)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	if domain == "" {
		return ""
	}
	if !strings.Contains(domain, ".myshopify.com") {
		domain = domain + ".myshopify.com"
	}
	return domain
}

func (c *adminClient) origin(shopDomain string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return "https://" + shopDomain
}

func (c *adminClient) GetShop(ctx context.Context, creds Credentials) (*Shop, error) {
	resp, err := c.makeRequest(ctx, creds, http.MethodGet, "/shop.json", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var shopResponse struct {
		Shop Shop `json:"shop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&shopResponse); err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "failed to decode shop response", Err: err}
	}
	return &shopResponse.Shop, nil
}

const productFields = `
                id
                title
                description
                vendor
                productType
                tags
                images(first: $imageFirst) {
                    edges {
                        node {
                            id
                            url
                            altText
                        }
                    }
                }
                variants(first: $variantFirst) {
                    edges {
                        node {
                            id
                            title
                            price
                            sku
                        }
                    }
                }`

const listProductsQuery = `
    query listProducts($first: Int!, $imageFirst: Int!, $variantFirst: Int!) {
        products(first: $first) {
            edges {
                node {` + productFields + `
                }
            }
        }
    }`

const listProductsByQuery = `
    query listProducts($first: Int!, $imageFirst: Int!, $variantFirst: Int!, $query: String!) {
        products(first: $first, query: $query) {
            edges {
                node {` + productFields + `
                }
            }
        }
    }`

type gqlImageNode struct {
	ID      string  `json:"id"`
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

type gqlVariantNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

type gqlProductNode struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Vendor      string   `json:"vendor"`
	ProductType string   `json:"productType"`
	Tags        []string `json:"tags"`
	Images      struct {
		Edges []struct {
			Node gqlImageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node gqlVariantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type productsResponse struct {
	Products struct {
		Edges []struct {
			Node gqlProductNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

func (c *adminClient) ListProducts(ctx context.Context, creds Credentials) ([]*models.Product, error) {
	req := graphql.NewRequest(listProductsQuery)
	return c.runProductsQuery(ctx, creds, req)
}

func (c *adminClient) ListProductsByIDs(ctx context.Context, creds Credentials, ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return c.ListProducts(ctx, creds)
	}

	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, fmt.Sprintf("%q", numericID(id)))
	}

	req := graphql.NewRequest(listProductsByQuery)
	req.Var("query", fmt.Sprintf("id:(%s)", strings.Join(quoted, ", ")))
	return c.runProductsQuery(ctx, creds, req)
}

func (c *adminClient) runProductsQuery(ctx context.Context, creds Credentials, req *graphql.Request) ([]*models.Product, error) {
	if !creds.Valid() {
		return nil, &APIError{Kind: KindAuth, Message: "shop domain and access token are required"}
	}

	req.Var("first", productPageSize)
	req.Var("imageFirst", imagePageSize)
	req.Var("variantFirst", variantPageSize)
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)

	endpoint := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.origin(creds.ShopDomain), APIVersion)
	gql := graphql.NewClient(endpoint, graphql.WithHTTPClient(c.graphQLHTTPClient()))

	var respData productsResponse
	if err := gql.Run(ctx, req, &respData); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, &APIError{Kind: KindNetwork, Message: "product query failed", Err: err}
	}

	products := make([]*models.Product, 0, len(respData.Products.Edges))
	for _, edge := range respData.Products.Edges {
		products = append(products, toProduct(edge.Node))
	}
	return products, nil
}

// graphQLHTTPClient wraps the underlying transport so Admin API error
// statuses become typed errors before machinebox tries to decode the body.
func (c *adminClient) graphQLHTTPClient() *http.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: &statusMappingTransport{base: base},
	}
}

type statusMappingTransport struct {
	base http.RoundTripper
}

func (t *statusMappingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, newStatusError(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func toProduct(node gqlProductNode) *models.Product {
	product := &models.Product{
		ID:          node.ID,
		Title:       node.Title,
		Description: node.Description,
		Vendor:      node.Vendor,
		ProductType: node.ProductType,
		Tags:        node.Tags,
		Images:      []*models.Image{},
		Variants:    []*models.Variant{},
		SKUs:        []string{},
	}

	for i, edge := range node.Images.Edges {
		alt := ""
		if edge.Node.AltText != nil {
			alt = *edge.Node.AltText
		}
		product.Images = append(product.Images, &models.Image{
			ID:       edge.Node.ID,
			Src:      edge.Node.URL,
			Alt:      alt,
			Position: i + 1,
		})
	}

	for _, edge := range node.Variants.Edges {
		product.Variants = append(product.Variants, &models.Variant{
			ID:    edge.Node.ID,
			Title: edge.Node.Title,
			Price: edge.Node.Price,
			SKU:   edge.Node.SKU,
		})
		if edge.Node.SKU != "" {
			product.SKUs = append(product.SKUs, edge.Node.SKU)
		}
	}

	return product
}

func (c *adminClient) UpdateImageAltText(ctx context.Context, creds Credentials, productID, imageID, altText string) error {
	if len(altText) > MaxAltTextLength {
		return &APIError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("alt text exceeds %d characters", MaxAltTextLength),
		}
	}

	pid := numericID(productID)
	iid := numericID(imageID)

	payload := map[string]interface{}{
		"image": map[string]interface{}{
			"id":  iid,
			"alt": altText,
		},
	}

	path := fmt.Sprintf("/products/%s/images/%s.json", pid, iid)
	resp, err := c.makeRequest(ctx, creds, http.MethodPut, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// makeRequest performs a REST request against the Admin API and maps error
// statuses to typed errors.
func (c *adminClient) makeRequest(ctx context.Context, creds Credentials, method, path string, payload interface{}) (*http.Response, error) {
	if !creds.Valid() {
		return nil, &APIError{Kind: KindAuth, Message: "shop domain and access token are required"}
	}

	url := fmt.Sprintf("%s/admin/api/%s%s", c.origin(creds.ShopDomain), APIVersion, path)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "request failed", Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, newStatusError(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return resp, nil
}

// numericID extracts the trailing numeric id from a GraphQL gid such as
// gid://shopify/ProductImage/123. Plain numeric ids pass through unchanged.
func numericID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}
