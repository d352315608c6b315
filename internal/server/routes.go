package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/packctl/internal/bitpack"
	"github.com/danmuck/packctl/internal/observability"
)

// Buffer ceiling for a single pack request, mirroring the layout compiler's
// 8 MiB layout cap. Requests past it are rejected before any allocation.
const (
	maxPackBytes = 8 * 1024 * 1024
	maxPackBits  = maxPackBytes * 8
)

type packRequest struct {
	Values    map[string]any `json:"values"`
	BitOffset uint           `json:"bit_offset"`
	SizeBytes int            `json:"size_bytes"`
}

type unpackRequest struct {
	Data      string `json:"data"`
	BitOffset uint   `json:"bit_offset"`
}

func (s *Packd) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"packd":   s.ID,
			"version": "0.0.1",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   len(s.names) > 0,
			"uptime":  time.Since(s.Appeared).String(),
			"packd":   s.ID,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/v1/layouts", func(c *gin.Context) {
		list := make([]gin.H, 0, len(s.names))
		for _, name := range s.names {
			l := s.layouts[name]
			list = append(list, gin.H{
				"name":       name,
				"bits":       l.Width(),
				"size_bytes": l.SizeBytes(),
				"fields":     l.FieldNames(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"layouts": list})
	})

	s.router.POST("/v1/layouts/:layout/pack", s.handlePack)
	s.router.POST("/v1/layouts/:layout/unpack", s.handleUnpack)
}

func (s *Packd) handlePack(c *gin.Context) {
	l, ok := s.layouts[c.Param("layout")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown layout"})
		return
	}

	var req packRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SizeBytes < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size_bytes must be non-negative"})
		return
	}
	if req.BitOffset > maxPackBits {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("bit_offset exceeds the %d-bit request ceiling", maxPackBits),
		})
		return
	}
	size := req.SizeBytes
	if size == 0 {
		// bit_offset and the layout width are both bounded, so this sum
		// cannot wrap.
		size = int((uint64(req.BitOffset) + uint64(l.Width()) + 7) / 8)
	}
	if size > maxPackBytes {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("buffer of %d bytes exceeds the %d-byte request ceiling", size, maxPackBytes),
		})
		return
	}
	buf := make([]byte, size)
	err := l.Pack(req.Values, buf, req.BitOffset)
	observability.RecordEngineOp(s.ID, l.Name(), "pack", l.Width(), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": hex.EncodeToString(buf),
		"bits": l.Width(),
	})
}

func (s *Packd) handleUnpack(c *gin.Context) {
	l, ok := s.layouts[c.Param("layout")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown layout"})
		return
	}

	var req unpackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buf, err := hex.DecodeString(req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data is not valid hex"})
		return
	}

	values, err := l.Unpack(buf, req.BitOffset)
	observability.RecordEngineOp(s.ID, l.Name(), "unpack", l.Width(), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"values": values})
}

// statusFor maps engine failures onto HTTP codes: buffer capacity problems
// are the client's sizing mistake (422), everything else from the layout
// layer is a malformed request (400).
func statusFor(err error) int {
	var capErr *bitpack.CapacityError
	if errors.As(err, &capErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
