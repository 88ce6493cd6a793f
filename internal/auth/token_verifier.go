package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const (
	DefaultFirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	firebaseIssuerPrefix    = "https://securetoken.google.com/"
	defaultCertsMaxAge      = time.Hour
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenVerifierParams struct {
	ProjectID string
	CertsURL  string
	// HMACSecret enables HS256 signed tokens (local development, tests). Empty disables them.
	HMACSecret string
	HttpClient *http.Client
}

// TokenVerifier verifies Firebase ID tokens (RS256, keys from the Google x509 endpoint)
// and optionally HS256 tokens signed with a shared secret.
type TokenVerifier struct {
	projectID  string
	hmacSecret []byte
	certs      *certsSource
	parser     *jwt.Parser
}

func NewTokenVerifier(params TokenVerifierParams) *TokenVerifier {
	validMethods := []string{jwt.SigningMethodRS256.Alg()}
	var hmacSecret []byte
	if params.HMACSecret != "" {
		hmacSecret = []byte(params.HMACSecret)
		validMethods = append(validMethods, jwt.SigningMethodHS256.Alg())
	}

	certsURL := params.CertsURL
	if certsURL == "" {
		certsURL = DefaultFirebaseCertsURL
	}
	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &TokenVerifier{
		projectID:  params.ProjectID,
		hmacSecret: hmacSecret,
		certs: &certsSource{
			url:        certsURL,
			httpClient: httpClient,
		},
		parser: jwt.NewParser(
			jwt.WithValidMethods(validMethods),
			jwt.WithAudience(params.ProjectID),
			jwt.WithIssuer(firebaseIssuerPrefix+params.ProjectID),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

func (v *TokenVerifier) Verify(ctx context.Context, token string) (_ *Identity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.verifier.verify")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return nil, fmt.Errorf("%w: empty token", pkg.ErrUnauthorized)
	}

	claims := &tokenClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.key(ctx, t)
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", pkg.ErrUnauthorized)
	}

	identity := &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func (v *TokenVerifier) key(ctx context.Context, t *jwt.Token) (any, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.hmacSecret == nil {
			return nil, errors.New("hmac signed tokens are disabled")
		}
		return v.hmacSecret, nil
	case *jwt.SigningMethodRSA:
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no key id")
		}
		return v.certs.publicKey(ctx, kid)
	default:
		return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
	}
}

// certsSource keeps the public signing keys, refreshed when the Cache-Control max-age passes.
type certsSource struct {
	url        string
	httpClient *http.Client

	mutex     sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

func (c *certsSource) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mutex.RLock()
	key, ok := c.keys[kid]
	fresh := time.Now().Before(c.expiresAt)
	c.mutex.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()
	key, ok = c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id: %s", kid)
	}
	return key, nil
}

func (c *certsSource) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("new certs request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get certs: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Errorf("close certs response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get certs: unexpected status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(certPEM))
		if err != nil {
			log.Warnf("skipping unparsable cert [%s]: %s", kid, err)
			continue
		}
		keys[kid] = key
	}

	c.mutex.Lock()
	c.keys = keys
	c.expiresAt = time.Now().Add(maxAge(resp.Header.Get("Cache-Control")))
	c.mutex.Unlock()

	log.Debugf("refreshed %d token signing keys", len(keys))
	return nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || name != "max-age" {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultCertsMaxAge
}
