package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/solarstock-api/internal/middleware"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/services"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// Content types for downloads
const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// respondError maps service errors onto status codes. Unexpected errors are logged,
// reported to Sentry and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	var stockErr *repository.InsufficientStockError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stockErr.Error(),
			"current":   stockErr.Current,
			"requested": stockErr.Requested,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, "path", c.FullPath(), "user", middleware.GetUsername(c), "error", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, fmt.Sprintf("Invalid %s", param))
		return 0, false
	}
	return uint(id), true
}

// optionalID reads a positive numeric query parameter when present
func optionalID(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		badRequest(c, fmt.Sprintf("Invalid %s", key))
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// listQuery builds a paginated query from page, per_page, search_term, sort_by and sort_dir
func listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20")); err == nil && perPage > 0 && perPage <= 500 {
		query.PerPage = perPage
	}
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{"page": query.Page, "per_page": query.PerPage, "total": total}
}

// parsePeriod reads start_date and end_date (YYYY-MM-DD); either may be omitted
func parsePeriod(c *gin.Context) (models.DateRange, bool) {
	var period models.DateRange
	for key, dst := range map[string]**time.Time{"start_date": &period.Start, "end_date": &period.End} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", key))
			return period, false
		}
		*dst = &t
	}
	if period.Start != nil && period.End != nil && period.End.Before(*period.Start) {
		badRequest(c, "end_date must not be before start_date")
		return period, false
	}
	return period, true
}

// parseDate reads an optional YYYY-MM-DD body field
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &t, nil
}

func sendFile(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
