package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	log := logger.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP())
		if id, ok := c.Get(ContextUserID); ok {
			event = event.Interface("userID", id)
		}
		event.Msg("Request handled")
	}
}

// SecurityHeaders sets the response headers every route shares
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Set("Cross-Origin-Embedder-Policy", "credentialless")
		h.Set("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

// OriginMatcher matches request origins against literal entries and /regex/ entries
type OriginMatcher struct {
	literals map[string]struct{}
	patterns []*regexp.Regexp
}

// NewOriginMatcher compiles the allowed origin list
func NewOriginMatcher(origins []string) (*OriginMatcher, error) {
	m := &OriginMatcher{literals: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if len(origin) > 2 && strings.HasPrefix(origin, "/") && strings.HasSuffix(origin, "/") {
			re, err := regexp.Compile(origin[1 : len(origin)-1])
			if err != nil {
				return nil, err
			}
			m.patterns = append(m.patterns, re)
			continue
		}
		m.literals[strings.TrimSuffix(origin, "/")] = struct{}{}
	}
	return m, nil
}

// Allowed reports whether origin may make credentialed requests
func (m *OriginMatcher) Allowed(origin string) bool {
	if _, ok := m.literals[origin]; ok {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// CORS allows credentialed requests from the configured origins
func CORS(origins []string) (gin.HandlerFunc, error) {
	matcher, err := NewOriginMatcher(origins)
	if err != nil {
		return nil, err
	}
	return cors.New(cors.Config{
		AllowOriginFunc:  matcher.Allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}), nil
}

// Recovery turns panics into a 500 error response
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
	})
}
