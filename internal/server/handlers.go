package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	htmlpdf "github.com/porticus-lab/htmlpdf-server"
)

const pdfDisposition = `attachment; filename=documento.pdf`

func (s *Server) handleConvertURL(c *gin.Context) {
	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := s.pipeline.ConvertURL(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, "url", err)
		return
	}
	s.servePDF(c, res)
}

func (s *Server) handleConvertHTML(c *gin.Context) {
	var req HTMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := s.pipeline.ConvertHTML(c.Request.Context(), req.HTMLContent)
	if err != nil {
		s.fail(c, "html", err)
		return
	}
	s.servePDF(c, res)
}

func (s *Server) handleConvertBase64(c *gin.Context) {
	var req Base64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := s.pipeline.ConvertBase64(c.Request.Context(), req.HTMLBase64)
	if err != nil {
		s.fail(c, "base64", err)
		return
	}
	s.servePDF(c, res)
}

func (s *Server) servePDF(c *gin.Context, res *htmlpdf.Result) {
	c.Header("Content-Disposition", pdfDisposition)
	c.Data(http.StatusOK, "application/pdf", res.Bytes())
}

// fail resolves a pipeline error to exactly one HTTP status and error
// body. Render failures are logged with the input mode and truncated
// engine detail, but the caller only sees a generic message.
func (s *Server) fail(c *gin.Context, mode string, err error) {
	var (
		fetchErr   *htmlpdf.FetchError
		extractErr *htmlpdf.ExtractionError
		decodeErr  *htmlpdf.DecodeError
		renderErr  *htmlpdf.RenderError
	)
	switch {
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fetchErr.Error()})
	case errors.As(err, &extractErr):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: extractErr.Error()})
	case errors.As(err, &decodeErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: decodeErr.Error()})
	case errors.As(err, &renderErr):
		s.log.Error().
			Str("mode", mode).
			Str("detail", truncate(renderErr.Error(), 256)).
			Msg("render failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "rendering failed"})
	case errors.Is(err, htmlpdf.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service shutting down"})
	default:
		s.log.Error().
			Str("mode", mode).
			Str("detail", truncate(err.Error(), 256)).
			Msg("conversion failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
