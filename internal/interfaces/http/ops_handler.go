package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetops/backend/internal/application/settlement"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
)

func registerHealthRoutes(engine *gin.Engine, db *persistence.Database) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

func registerOpsRoutes(group *gin.RouterGroup, ledger *settlement.LedgerService) {
	// Manual trigger for the weekly close, for operators catching up
	// after an outage. The scheduled run uses the same code path.
	group.POST("/close-week", func(c *gin.Context) {
		var body struct {
			AsOf *time.Time `json:"as_of"`
		}
		// an empty body means close as of now
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}

		asOf := time.Now()
		if body.AsOf != nil {
			asOf = *body.AsOf
		}

		report, err := ledger.CloseWeek(c.Request.Context(), currentPrincipal(c), asOf)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses
func writeDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case shared.CodeNotFound:
		status = http.StatusNotFound
	case shared.CodeValidation:
		status = http.StatusBadRequest
	case shared.CodeConflict:
		status = http.StatusConflict
	case shared.CodeTenantIsolation:
		status = http.StatusForbidden
	case shared.CodeStoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": domainErr.Message, "code": domainErr.Code})
}
