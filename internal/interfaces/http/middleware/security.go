package middleware

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	appauth "github.com/webstack/backend/internal/application/auth"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/config"
	"github.com/webstack/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by Security
const (
	PrincipalKey       = "principal"
	PrincipalDetailKey = "principal_detail"
)

// Access decisions of a rule
const (
	PolicyPermit        = "permit"
	PolicyAuthenticated = "authenticated"
)

// Authenticator resolves credentials into a principal
type Authenticator interface {
	AuthenticateBearer(ctx context.Context, token string) (*appauth.Principal, error)
	AuthenticateBasic(ctx context.Context, username, password string) (*appauth.Principal, error)
}

// SecurityRule matches requests by optional method and ant-style path pattern
type SecurityRule struct {
	Method   string
	Pattern  string
	Policy   string
	segments []string
}

// ParseSecurityRule parses "[METHOD ]PATTERN".
// In patterns "*" matches one segment and "**" matches any remaining segments.
func ParseSecurityRule(expr, policy string) (SecurityRule, error) {
	fields := strings.Fields(expr)
	var method, pattern string
	switch len(fields) {
	case 1:
		pattern = fields[0]
	case 2:
		method, pattern = strings.ToUpper(fields[0]), fields[1]
	default:
		return SecurityRule{}, fmt.Errorf("invalid security rule %q", expr)
	}
	if !strings.HasPrefix(pattern, "/") {
		return SecurityRule{}, fmt.Errorf("security rule pattern must start with '/': %q", expr)
	}

	segments := splitPath(pattern)
	for i, seg := range segments {
		if seg == "**" && i != len(segments)-1 {
			return SecurityRule{}, fmt.Errorf("'**' must be the last segment: %q", expr)
		}
		if _, err := path.Match(seg, ""); err != nil {
			return SecurityRule{}, fmt.Errorf("invalid security rule %q: %w", expr, err)
		}
	}

	return SecurityRule{Method: method, Pattern: pattern, Policy: policy, segments: segments}, nil
}

// Matches reports whether the rule applies to the request
func (r SecurityRule) Matches(method, requestPath string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	return matchSegments(r.segments, splitPath(requestPath))
}

func (r SecurityRule) String() string {
	if r.Method == "" {
		return r.Pattern + " -> " + r.Policy
	}
	return r.Method + " " + r.Pattern + " -> " + r.Policy
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}
	if pattern[0] == "**" {
		return true
	}
	if len(segments) == 0 {
		return false
	}
	if ok, _ := path.Match(pattern[0], segments[0]); !ok {
		return false
	}
	return matchSegments(pattern[1:], segments[1:])
}

// SecurityRules is an ordered rule list with a fallback policy
type SecurityRules struct {
	rules         []SecurityRule
	defaultPolicy string
}

// NewSecurityRules builds the rule chain: protected paths first, then public paths
func NewSecurityRules(cfg config.SecurityConfig) (*SecurityRules, error) {
	sr := &SecurityRules{defaultPolicy: cfg.DefaultPolicy}
	if sr.defaultPolicy == "" {
		sr.defaultPolicy = PolicyAuthenticated
	}
	if sr.defaultPolicy != PolicyPermit && sr.defaultPolicy != PolicyAuthenticated {
		return nil, fmt.Errorf("unknown default policy %q", cfg.DefaultPolicy)
	}

	if err := sr.add(cfg.ProtectedPaths, PolicyAuthenticated); err != nil {
		return nil, err
	}
	if err := sr.add(cfg.PublicPaths, PolicyPermit); err != nil {
		return nil, err
	}
	return sr, nil
}

func (sr *SecurityRules) add(exprs []string, policy string) error {
	for _, expr := range exprs {
		rule, err := ParseSecurityRule(expr, policy)
		if err != nil {
			return err
		}
		sr.rules = append(sr.rules, rule)
	}
	return nil
}

// Permit appends permit rules after the configured ones
func (sr *SecurityRules) Permit(exprs ...string) error {
	return sr.add(exprs, PolicyPermit)
}

// Policy returns the policy of the first matching rule
func (sr *SecurityRules) Policy(method, requestPath string) string {
	for _, rule := range sr.rules {
		if rule.Matches(method, requestPath) {
			return rule.Policy
		}
	}
	return sr.defaultPolicy
}

// Rules returns a copy of the ordered rules
func (sr *SecurityRules) Rules() []SecurityRule {
	return append([]SecurityRule(nil), sr.rules...)
}

// GetPrincipal returns the authenticated username, or "" for anonymous requests
func GetPrincipal(c *gin.Context) string {
	return c.GetString(PrincipalKey)
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Security authenticates requests and enforces the rule chain.
// Permitted requests are authenticated when they carry credentials but never rejected for them.
func Security(rules *SecurityRules, authenticator Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy := rules.Policy(c.Request.Method, c.Request.URL.Path)

		principal, err := authenticate(c, authenticator)
		if principal != nil {
			c.Set(PrincipalKey, principal.Username)
			c.Set(PrincipalDetailKey, principal)
		}

		if policy == PolicyPermit {
			c.Next()
			return
		}

		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) {
				logger.Error("Authentication backend failed", zap.Error(err))
				abortWithError(c, dto.ErrCodeServiceUnavailable, "Authentication is temporarily unavailable")
				return
			}
			challenge(c)
			abortWithError(c, domainErr.Code, domainErr.Message)
			return
		}
		if principal == nil {
			challenge(c)
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

// authenticate returns nil, nil when the request carries no credentials
func authenticate(c *gin.Context, authenticator Authenticator) (*appauth.Principal, error) {
	if token := BearerToken(c); token != "" {
		return authenticator.AuthenticateBearer(c.Request.Context(), token)
	}
	if username, password, ok := c.Request.BasicAuth(); ok {
		return authenticator.AuthenticateBasic(c.Request.Context(), username, password)
	}
	return nil, nil
}

func challenge(c *gin.Context) {
	c.Writer.Header().Add("WWW-Authenticate", `Bearer realm="webstack"`)
	c.Writer.Header().Add("WWW-Authenticate", `Basic realm="webstack"`)
}
