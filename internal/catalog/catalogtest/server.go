// Package catalogtest serves a fake product catalog API for tests.
package catalogtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

// Product is one catalog item in the DummyJSON shape.
type Product struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Brand    string   `json:"brand,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// Server is a running fake catalog API.
type Server struct {
	*httptest.Server

	hits      atomic.Int32
	failFirst int32
	status    int
	raw       string
	products  []Product
}

// Option customizes the fake server.
type Option func(*Server)

// WithStatus makes every request fail with status.
func WithStatus(status int) Option {
	return func(s *Server) { s.status = status }
}

// WithRawBody replaces the JSON payload with body.
func WithRawBody(body string) Option {
	return func(s *Server) { s.raw = body }
}

// FailFirst answers the first n requests with 503.
func FailFirst(n int) Option {
	return func(s *Server) { s.failFirst = int32(n) }
}

// New starts a fake catalog serving products at /products. The server is
// closed when the test ends.
func New(t testing.TB, products []Product, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{products: products}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.GET("/products", s.handleProducts)

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)
	return s
}

// ProductsURL returns the products endpoint.
func (s *Server) ProductsURL() string {
	return s.Server.URL + "/products"
}

// Hits returns the number of requests served.
func (s *Server) Hits() int {
	return int(s.hits.Load())
}

func (s *Server) handleProducts(c *gin.Context) {
	n := s.hits.Add(1)

	if n <= s.failFirst {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "try again"})
		return
	}
	if s.status != 0 {
		c.JSON(s.status, gin.H{"message": http.StatusText(s.status)})
		return
	}
	if s.raw != "" {
		c.Data(http.StatusOK, "application/json", []byte(s.raw))
		return
	}

	products := s.products
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit >= 0 && limit < len(products) {
		products = products[:limit]
	}
	if products == nil {
		products = []Product{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(s.products),
		"limit":    len(products),
	})
}

// Rating returns a pointer to r.
func Rating(r float64) *float64 {
	return &r
}
