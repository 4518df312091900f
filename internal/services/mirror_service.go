package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"altify/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const mirrorBucket = "image-mirror"

// MirrorService keeps local copies of product images in object storage so
// the UI can show thumbnails without hitting the Shopify CDN on every page
// load.
type MirrorService interface {
	MirrorProductImages(ctx context.Context, shopDomain string, product *models.Product) (int, error)
	PresignedImageURL(shopDomain, productID, imageID string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context) error
}

type minioMirror struct {
	client     *minio.Client
	httpClient *http.Client
}

func NewMirrorService(endpoint, accessKey, secretKey string, useSSL bool) (MirrorService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioMirror{
		client:     client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func objectKey(shopDomain, productID, imageID string) string {
	return fmt.Sprintf("%s/%s/%s", shopDomain, productID, imageID)
}

// MirrorProductImages downloads each image of the product and stores it under
// a shop-scoped key. Returns how many images were copied; images that fail to
// download are skipped rather than failing the whole product.
func (m *minioMirror) MirrorProductImages(ctx context.Context, shopDomain string, product *models.Product) (int, error) {
	if err := m.EnsureBucketExists(ctx); err != nil {
		return 0, err
	}

	mirrored := 0
	for _, image := range product.Images {
		if image.Src == "" {
			continue
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, image.Src, nil)
		if err != nil {
			continue
		}
		resp, err := m.httpClient.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			continue
		}

		key := objectKey(shopDomain, product.ID, image.ID)
		_, err = m.client.PutObject(ctx, mirrorBucket, key, resp.Body, resp.ContentLength, minio.PutObjectOptions{
			ContentType: resp.Header.Get("Content-Type"),
		})
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}
		mirrored++
	}
	return mirrored, nil
}

func (m *minioMirror) PresignedImageURL(shopDomain, productID, imageID string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), mirrorBucket, objectKey(shopDomain, productID, imageID), expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioMirror) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, mirrorBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, mirrorBucket, minio.MakeBucketOptions{})
	}
	return nil
}
