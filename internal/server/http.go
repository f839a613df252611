package server

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"time"

	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/metrics"
	"ambassador-tracker/internal/service"
	"ambassador-tracker/pkg/problemdetails"

	"github.com/go-kratos/kratos/v2/encoding"
	"github.com/go-kratos/kratos/v2/encoding/json"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/selector"
	"github.com/go-kratos/kratos/v2/middleware/tracing"
	"github.com/go-kratos/kratos/v2/transport/http"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/handlers"
)

const healthTimeout = 2 * time.Second

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	auth *conf.Auth,
	university *service.UniversityService,
	health HealthChecker,
	m *metrics.Metrics,
	logger log.Logger,
) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			tracing.Server(),
			logging.Server(logger),
			ratelimit.Server(),
			observe(m),
			selector.Server(operatorAuth(auth, logger)).
				Match(func(_ context.Context, operation string) bool {
					return service.IsOperatorOperation(operation)
				}).
				Build(),
		),
		http.Filter(handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		)),
		http.RequestDecoder(lenientRequestDecoder),
		http.ErrorEncoder(problemErrorEncoder),
	}
	if c != nil && c.Http != nil {
		if c.Http.Network != "" {
			opts = append(opts, http.Network(c.Http.Network))
		}
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout.AsDuration() > 0 {
			opts = append(opts, http.Timeout(c.Http.Timeout.AsDuration()))
		}
	}
	srv := http.NewServer(opts...)
	university.RegisterHTTPRoutes(srv)

	srv.Handle("/metrics", m.Handler())
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			log.NewHelper(logger).WithContext(ctx).Warnf("health check failed: %v", err)
			problemdetails.New(nethttp.StatusServiceUnavailable, problemdetails.TypeInternalError,
				"Service Unavailable", "a backing store is unreachable").Write(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return srv
}

// operatorAuth validates HS256 university tokens. With no secret configured
// every operator request is rejected.
func operatorAuth(auth *conf.Auth, logger log.Logger) middleware.Middleware {
	var secret []byte
	if auth != nil && auth.JwtSecret != "" {
		secret = []byte(auth.JwtSecret)
	} else {
		log.NewHelper(logger).Warn("auth.jwt_secret is empty, operator endpoints will reject all requests")
	}
	return jwt.Server(
		func(*jwtv5.Token) (any, error) {
			if secret == nil {
				return nil, errors.Unauthorized("UNAUTHORIZED", "operator authentication is not configured")
			}
			return secret, nil
		},
		jwt.WithSigningMethod(jwtv5.SigningMethodHS256),
		jwt.WithClaims(service.NewUniversityClaims),
	)
}

// lenientRequestDecoder decodes bodies with an unregistered content type,
// such as the text/plain sent by navigator.sendBeacon, as JSON.
func lenientRequestDecoder(r *nethttp.Request, v any) error {
	if _, ok := http.CodecForRequest(r, "Content-Type"); ok {
		return http.DefaultRequestDecoder(r, v)
	}
	data, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewBuffer(data))
	if err != nil {
		return errors.BadRequest("CODEC", err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := encoding.GetCodec(json.Name).Unmarshal(data, v); err != nil {
		return errors.BadRequest("CODEC", "body unmarshal "+err.Error())
	}
	return nil
}

func problemErrorEncoder(w nethttp.ResponseWriter, _ *nethttp.Request, err error) {
	problemdetails.FromError(err).Write(w)
}
