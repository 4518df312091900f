package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"altify/internal/caching"
	"altify/internal/models"
	"altify/internal/shopify"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionTTL bounds how long a connected store stays usable without
	// reconnecting. Everything keyed to the session in Redis shares it.
	SessionTTL = 12 * time.Hour
)

var ErrSessionNotFound = errors.New("session not found or expired")

type SessionService interface {
	// Connect verifies the credentials against the store and, on success,
	// creates a session and returns it with a signed bearer token.
	Connect(ctx context.Context, shopDomain, accessToken string) (*models.Session, string, error)
	Disconnect(ctx context.Context, sessionID uuid.UUID) error
	Resolve(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	Credentials(ctx context.Context, sessionID uuid.UUID) (shopify.Credentials, error)
}

type sessionService struct {
	shopifyClient shopify.Client
	cacheService  caching.CacheService
	jwtSecret     []byte
}

func NewSessionService(shopifyClient shopify.Client, cacheService caching.CacheService, jwtSecret string) SessionService {
	return &sessionService{
		shopifyClient: shopifyClient,
		cacheService:  cacheService,
		jwtSecret:     []byte(jwtSecret),
	}
}

func (s *sessionService) Connect(ctx context.Context, shopDomain, accessToken string) (*models.Session, string, error) {
	domain := shopify.NormalizeShopDomain(shopDomain)
	creds := shopify.Credentials{ShopDomain: domain, AccessToken: accessToken}
	if !creds.Valid() {
		return nil, "", &shopify.APIError{Kind: shopify.KindAuth, Message: "shop domain and access token are required"}
	}

	// The shop probe doubles as the credential check. No session exists
	// until it succeeds.
	shop, err := s.shopifyClient.GetShop(ctx, creds)
	if err != nil {
		return nil, "", err
	}

	session := &models.Session{
		ID:          uuid.New(),
		ShopDomain:  domain,
		ShopName:    shop.Name,
		AccessToken: accessToken,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.cacheService.SetSession(ctx, session, SessionTTL); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.issueToken(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return session, token, nil
}

func (s *sessionService) Disconnect(ctx context.Context, sessionID uuid.UUID) error {
	return s.cacheService.DeleteSession(ctx, sessionID)
}

func (s *sessionService) Resolve(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.cacheService.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) Credentials(ctx context.Context, sessionID uuid.UUID) (shopify.Credentials, error) {
	session, err := s.Resolve(ctx, sessionID)
	if err != nil {
		return shopify.Credentials{}, err
	}
	return shopify.Credentials{ShopDomain: session.ShopDomain, AccessToken: session.AccessToken}, nil
}

func (s *sessionService) issueToken(session *models.Session) (string, error) {
	claims := jwt.MapClaims{
		"session_id":  session.ID.String(),
		"shop_domain": session.ShopDomain,
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(SessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
