package jwtmanager

import (
	"context"
	"errors"
	"fmt"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/pkg/constvars"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const defaultTokenTTL = 5 * time.Minute

// JWTManager signs the HS256 tokens attached to outgoing payment events so
// consumers can check they were produced by this service.
type JWTManager struct {
	log    *zap.Logger
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CreateTokenInput defines input parameters for token creation.
type CreateTokenInput struct {
	Subject string
	Claims  map[string]interface{}
}

// CreateTokenOutput contains the signed token string.
type CreateTokenOutput struct {
	Token string
}

// VerifyTokenInput defines parameters for token verification.
type VerifyTokenInput struct {
	Token string
}

// VerifyTokenOutput contains the verification result and decoded claims.
type VerifyTokenOutput struct {
	Valid  bool
	Claims map[string]interface{}
}

// NewJWTManager constructs a JWTManager from InternalConfig.Event.
func NewJWTManager(cfg *config.InternalConfig, log *zap.Logger) (*JWTManager, error) {
	secret := strings.TrimSpace(cfg.Event.SigningSecret)
	if secret == "" {
		return nil, fmt.Errorf("EVENT_SIGNING_SECRET is empty")
	}

	ttl := time.Duration(cfg.Event.TokenTTLInMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &JWTManager{
		log:    log,
		secret: []byte(secret),
		issuer: cfg.Event.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// CreateToken generates a signed JWT. It sets iat and nbf to now and exp to
// now plus the configured TTL.
func (j *JWTManager) CreateToken(ctx context.Context, in *CreateTokenInput) (*CreateTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	j.log.Debug("JWTManager.CreateToken called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if in == nil || strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	now := j.now().UTC()
	claims := jwt.MapClaims{}
	for k, v := range in.Claims {
		claims[k] = v
	}
	claims["sub"] = in.Subject
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = now.Add(j.ttl).Unix()
	if j.issuer != "" {
		claims["iss"] = j.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return nil, err
	}
	return &CreateTokenOutput{Token: signed}, nil
}

// VerifyToken checks the signature and standard time claims.
func (j *JWTManager) VerifyToken(ctx context.Context, in *VerifyTokenInput) (*VerifyTokenOutput, error) {
	if in == nil || strings.TrimSpace(in.Token) == "" {
		return nil, fmt.Errorf("token is required")
	}

	token, err := jwt.Parse(in.Token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return j.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			return &VerifyTokenOutput{Valid: false}, nil
		}
		return nil, err
	}

	claims, _ := token.Claims.(jwt.MapClaims)
	if j.issuer != "" && !claims.VerifyIssuer(j.issuer, true) {
		return &VerifyTokenOutput{Valid: false}, nil
	}
	return &VerifyTokenOutput{Valid: token.Valid, Claims: claims}, nil
}
