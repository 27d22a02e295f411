package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
)

// Read endpoints over the records the import pipeline materializes. Writes
// happen only through ingestion; the frontend browses the results here.

func shopFromContext(c *gin.Context) (string, bool) {
	shopId, ok := utils.GetShopIdFromContext(c.Request.Context())
	if !ok || shopId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return shopId, true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shopId, ok := shopFromContext(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}

		customer, err := models.GetCustomer(c.Request.Context(), shopId, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer": customer})
	}
}

func getRepairOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shopId, ok := shopFromContext(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}

		order, err := models.GetRepairOrder(c.Request.Context(), shopId, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "repair order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"repair_order": order})
	}
}

func listRepairOrderPartsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shopId, ok := shopFromContext(c)
		if !ok {
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		if err := utils.ValidateResourceId[models.RepairOrder](ctx, shopId, id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "repair order not found"})
			return
		}

		parts, err := models.GetRepairOrderParts(ctx, shopId, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"parts": parts})
	}
}

func listInsurersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shopId, ok := shopFromContext(c)
		if !ok {
			return
		}

		insurers, err := models.GetInsurers(c.Request.Context(), shopId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"insurers": insurers})
	}
}
