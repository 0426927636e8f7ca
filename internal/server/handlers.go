package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeXML  = "application/xml"
	skippedResponse = "RSS feed generation skipped"
)

func (s *Server) handleFeed(c *gin.Context) {
	src, ok := s.sources.Source(c.Param("source"))
	if !ok {
		c.String(http.StatusNotFound, "unknown feed source")
		return
	}

	if !s.opts.Dynamic && !wantsFresh(c.Request) {
		s.metrics.ObserveSkipped(src.ID)
		c.String(http.StatusNotModified, skippedResponse)
		return
	}

	body, err := s.feeds.Generate(c.Request.Context(), src)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, contentTypeXML, body)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.opts.AppName,
	})
}

// wantsFresh reports whether the request's Cache-Control carries no-cache.
func wantsFresh(r *http.Request) bool {
	for _, v := range r.Header.Values("Cache-Control") {
		if strings.Contains(strings.ToLower(v), "no-cache") {
			return true
		}
	}
	return false
}
