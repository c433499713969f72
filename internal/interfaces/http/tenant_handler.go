package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appidentity "github.com/fleetops/backend/internal/application/identity"
	"github.com/fleetops/backend/internal/domain/identity"
	"github.com/fleetops/backend/internal/domain/shared"
)

// registerTenantRoutes wires tenant directory administration under /ops.
// Everything here already passed the super-admin middleware.
func registerTenantRoutes(group *gin.RouterGroup, tenants *appidentity.TenantService) {
	group.POST("/tenants", func(c *gin.Context) {
		var body struct {
			Code        string `json:"code" binding:"required"`
			Name        string `json:"name" binding:"required"`
			ContactName string `json:"contact_name"`
			Phone       string `json:"phone"`
			Email       string `json:"email"`
			Plan        string `json:"plan"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dto, err := tenants.Register(c.Request.Context(), currentPrincipal(c), appidentity.RegisterTenantInput{
			Code:        body.Code,
			Name:        body.Name,
			ContactName: body.ContactName,
			Phone:       body.Phone,
			Email:       body.Email,
			Plan:        identity.TenantPlan(body.Plan),
		})
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto)
	})

	group.GET("/tenants", func(c *gin.Context) {
		dtos, err := tenants.List(c.Request.Context(), currentPrincipal(c), shared.DefaultFilter())
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenants": dtos})
	})

	group.GET("/tenants/:id", func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant id"})
			return
		}
		dto, err := tenants.Get(c.Request.Context(), currentPrincipal(c), id)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto)
	})

	lifecycle := func(action func(c *gin.Context, id uuid.UUID) error) gin.HandlerFunc {
		return func(c *gin.Context) {
			id, err := uuid.Parse(c.Param("id"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant id"})
				return
			}
			if err := action(c, id); err != nil {
				writeDomainError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		}
	}

	group.POST("/tenants/:id/suspend", lifecycle(func(c *gin.Context, id uuid.UUID) error {
		return tenants.Suspend(c.Request.Context(), currentPrincipal(c), id)
	}))
	group.POST("/tenants/:id/reactivate", lifecycle(func(c *gin.Context, id uuid.UUID) error {
		return tenants.Reactivate(c.Request.Context(), currentPrincipal(c), id)
	}))
	group.POST("/tenants/:id/cancel", lifecycle(func(c *gin.Context, id uuid.UUID) error {
		return tenants.Cancel(c.Request.Context(), currentPrincipal(c), id)
	}))
	group.DELETE("/tenants/:id", lifecycle(func(c *gin.Context, id uuid.UUID) error {
		return tenants.Delete(c.Request.Context(), currentPrincipal(c), id)
	}))
}
