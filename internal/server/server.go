// Package server exposes the Lambda request router over plain HTTP for local
// development.
package server

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
)

// ProxyHandler is satisfied by handler.Handler.
type ProxyHandler interface {
	Handle(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

func NewRouter(ctx context.Context, h ProxyHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	proxy := adapt(ctx, h)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, handler.MethodNotAllowed())
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-image", proxy)
		r.Options("/generate-image", proxy)
		r.Get("/images", proxy)
		r.Options("/images", proxy)
	})
	return r
}

func adapt(ctx context.Context, h ProxyHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req := events.APIGatewayProxyRequest{
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Headers: lo.MapValues(r.Header, func(v []string, _ string) string {
				return strings.Join(v, ",")
			}),
			QueryStringParameters: lo.MapValues(r.URL.Query(), func(v []string, _ string) string {
				return v[len(v)-1]
			}),
			RequestContext: events.APIGatewayProxyRequestContext{
				RequestID: middleware.GetReqID(r.Context()),
			},
		}
		if utf8.Valid(body) {
			req.Body = string(body)
		} else {
			req.Body = base64.StdEncoding.EncodeToString(body)
			req.IsBase64Encoded = true
		}

		reqCtx := log.NewContext(r.Context(), log.FromContextOrDiscard(ctx))
		resp, err := h.Handle(reqCtx, req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeResponse(w, resp)
	}
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	data := []byte(resp.Body)
	if resp.IsBase64Encoded {
		var err error
		if data, err = base64.StdEncoding.DecodeString(resp.Body); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(data)
}
