package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverURL string) *adminClient {
	return &adminClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    serverURL,
	}
}

func testCreds() Credentials {
	return Credentials{ShopDomain: "test-store.myshopify.com", AccessToken: "shpat_test"}
}

func TestNormalizeShopDomain(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"my-store", "my-store.myshopify.com"},
		{"my-store.myshopify.com", "my-store.myshopify.com"},
		{"https://my-store.myshopify.com", "my-store.myshopify.com"},
		{"https://my-store.myshopify.com/", "my-store.myshopify.com"},
		{"http://my-store", "my-store.myshopify.com"},
		{"  my-store  ", "my-store.myshopify.com"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, NormalizeShopDomain(tc.in), "input %q", tc.in)
	}
}

func TestGetShop_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/"+APIVersion+"/shop.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"shop": map[string]string{
				"name":             "Test Store",
				"myshopify_domain": "test-store.myshopify.com",
				"email":            "owner@example.com",
			},
		})
	}))
	defer srv.Close()

	shop, err := testClient(srv.URL).GetShop(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, "Test Store", shop.Name)
	assert.Equal(t, "test-store.myshopify.com", shop.Domain)
}

func TestGetShop_StatusMapping(t *testing.T) {
	cases := []struct {
		status   int
		expected Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindNetwork},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		_, err := testClient(srv.URL).GetShop(context.Background(), testCreds())
		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.expected, ErrKind(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestGetShop_MissingCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetShop(context.Background(), Credentials{})
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.False(t, called, "no request should be made without credentials")
}

func TestListProducts_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/"+APIVersion+"/graphql.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "products(first: $first)")
		assert.EqualValues(t, 50, body.Variables["first"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"products": map[string]interface{}{
					"edges": []map[string]interface{}{
						{
							"node": map[string]interface{}{
								"id":          "gid://shopify/Product/1001",
								"title":       "Widget",
								"vendor":      "Acme",
								"productType": "Gadget",
								"tags":        []string{"new"},
								"images": map[string]interface{}{
									"edges": []map[string]interface{}{
										{"node": map[string]interface{}{
											"id":      "gid://shopify/ProductImage/2001",
											"url":     "https://cdn.example.com/a.jpg",
											"altText": nil,
										}},
										{"node": map[string]interface{}{
											"id":      "gid://shopify/ProductImage/2002",
											"url":     "https://cdn.example.com/b.jpg",
											"altText": "existing alt",
										}},
									},
								},
								"variants": map[string]interface{}{
									"edges": []map[string]interface{}{
										{"node": map[string]interface{}{
											"id":    "gid://shopify/ProductVariant/3001",
											"title": "Default",
											"price": "9.99",
											"sku":   "SKU-1",
										}},
									},
								},
							},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	products, err := testClient(srv.URL).ListProducts(context.Background(), testCreds())
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "gid://shopify/Product/1001", p.ID)
	assert.Equal(t, "Widget", p.Title)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "", p.Images[0].Alt, "null altText becomes empty string")
	assert.Equal(t, "existing alt", p.Images[1].Alt)
	assert.Equal(t, 1, p.Images[0].Position)
	assert.Equal(t, 2, p.Images[1].Position)
	assert.Equal(t, []string{"SKU-1"}, p.SKUs)
}

func TestListProducts_AuthErrorSurfacesKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListProducts(context.Background(), testCreds())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestListProducts_MissingCredentials(t *testing.T) {
	_, err := testClient("http://unused").ListProducts(context.Background(), Credentials{ShopDomain: "x"})
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestListProductsByIDs_BuildsQueryFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "query: $query")
		assert.Equal(t, `id:("1001", "1002")`, body.Variables["query"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"products": map[string]interface{}{"edges": []interface{}{}},
			},
		})
	}))
	defer srv.Close()

	ids := []string{"gid://shopify/Product/1001", "1002"}
	_, err := testClient(srv.URL).ListProductsByIDs(context.Background(), testCreds(), ids)
	require.NoError(t, err)
}

func TestUpdateImageAltText_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/api/"+APIVersion+"/products/1001/images/2001.json", r.URL.Path)

		var body map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2001", body["image"]["id"])
		assert.Equal(t, "Widget – Acme", body["image"]["alt"])

		json.NewEncoder(w).Encode(map[string]interface{}{"image": map[string]interface{}{"id": 2001}})
	}))
	defer srv.Close()

	err := testClient(srv.URL).UpdateImageAltText(context.Background(), testCreds(),
		"gid://shopify/Product/1001", "gid://shopify/ProductImage/2001", "Widget – Acme")
	assert.NoError(t, err)
}

func TestUpdateImageAltText_EmptyAltClears(t *testing.T) {
	var gotAlt interface{} = "unset"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotAlt = body["image"]["alt"]
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer srv.Close()

	err := testClient(srv.URL).UpdateImageAltText(context.Background(), testCreds(), "1001", "2001", "")
	require.NoError(t, err)
	assert.Equal(t, "", gotAlt, "empty alt is sent, not omitted")
}

func TestUpdateImageAltText_TooLongRejectedLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	long := strings.Repeat("a", MaxAltTextLength+1)
	err := testClient(srv.URL).UpdateImageAltText(context.Background(), testCreds(), "1001", "2001", long)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.False(t, called, "over-limit alt text should never reach the API")
}

func TestUpdateImageAltText_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := testClient(srv.URL).UpdateImageAltText(context.Background(), testCreds(), "1001", "9999", "alt")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestNumericID(t *testing.T) {
	assert.Equal(t, "123", numericID("gid://shopify/ProductImage/123"))
	assert.Equal(t, "123", numericID("123"))
	assert.Equal(t, "", numericID("trailing/"))
}

func TestKindHints(t *testing.T) {
	for _, kind := range []Kind{KindNetwork, KindAuth, KindRateLimit, KindNotFound, KindValidation} {
		assert.NotEmpty(t, kind.Hint())
		assert.NotEmpty(t, kind.String())
	}
}
