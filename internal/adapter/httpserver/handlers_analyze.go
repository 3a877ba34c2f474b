package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/socialsent/internal/domain"
	apperrors "github.com/pscheid92/socialsent/internal/platform/errors"
)

type analyzeRequest struct {
	Text *string `json:"text"`
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type batchResponse struct {
	Results []domain.SentimentResult `json:"results"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON object")
	}
	if req.Text == nil {
		return apperrors.ValidationError("text is required").WithField("field", "text")
	}

	analysis, err := s.app.Analyze(c.Request().Context(), *req.Text)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, analysis); err != nil {
		return fmt.Errorf("failed to write analysis response: %w", err)
	}
	return nil
}

func (s *Server) handleAnalyzeBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON object")
	}

	results, err := s.app.AnalyzeBatch(c.Request().Context(), req.Texts)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, batchResponse{Results: results}); err != nil {
		return fmt.Errorf("failed to write batch response: %w", err)
	}
	return nil
}
