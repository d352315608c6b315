// Package server owns the packd HTTP surface.
//
// Ownership boundary:
// - layout registry exposed over HTTP
// - pack/unpack endpoints and their error mapping
// - health, readiness, and metrics routes
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/packctl/internal/layout"
	"github.com/danmuck/packctl/internal/observability"
)

// Packd serves named bit layouts over HTTP. Layouts are registered before
// RegisterRoutes; the registry is read-only while serving.
type Packd struct {
	ID       string
	Addr     string
	Appeared time.Time

	layouts map[string]*layout.Compiled
	names   []string
	router  *gin.Engine
}

// Appear builds a Packd with the standard middleware chain.
func Appear(id, addr string, corsOrigins []string) *Packd {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.Instrument(id, log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Packd{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		layouts:  make(map[string]*layout.Compiled),
		router:   r,
	}
}

// RegisterLayout adds a compiled layout to the registry.
func (s *Packd) RegisterLayout(c *layout.Compiled) error {
	if _, dup := s.layouts[c.Name()]; dup {
		return fmt.Errorf("server: duplicate layout %q", c.Name())
	}
	s.layouts[c.Name()] = c
	s.names = append(s.names, c.Name())
	return nil
}

// Layout returns a registered layout by name.
func (s *Packd) Layout(name string) (*layout.Compiled, bool) {
	c, ok := s.layouts[name]
	return c, ok
}

// LayoutNames returns registered layout names in registration order.
func (s *Packd) LayoutNames() []string {
	return append([]string(nil), s.names...)
}

func (s *Packd) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Packd) Serve() error {
	s.RegisterRoutes()
	log.Info().
		Str("packd", s.ID).
		Str("addr", s.Addr).
		Int("layouts", len(s.names)).
		Msg("serving")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}
