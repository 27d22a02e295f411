package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
)

type vehicleLookupRequest struct {
	Vin string `uri:"vin" binding:"required,vin"`
}

// getVehicleByVinHandler answers "have we seen this vehicle before" for the
// front desk, before an estimate file ever arrives.
func getVehicleByVinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if shopId, ok := utils.GetShopIdFromContext(ctx); !ok || shopId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req vehicleLookupRequest
		if err := c.ShouldBindUri(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vin must be 17 characters"})
			return
		}

		vehicle, err := models.FindVehicleByVin(ctx, req.Vin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if vehicle == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"vehicle": vehicle, "description": vehicle.Description()})
	}
}
