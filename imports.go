package main

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/collisionworks/bodyshop_backend/workflow"
)

func init() {
	// "vin" binding tag for request structs that carry one directly.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("vin", func(fl validator.FieldLevel) bool {
			return len(strings.TrimSpace(fl.Field().String())) == models.VinLength
		})
	}
}

// 10 MB is generous: real BMS estimate files are tens of kilobytes.
const maxEstimateFileSize = 10 << 20

type bmsImportJSONRequest struct {
	FileName              string `json:"file_name" binding:"required"`
	Format                string `json:"format"`
	Content               string `json:"content" binding:"required"`
	AutoCreateRepairOrder *bool  `json:"auto_create_repair_order"`
}

// bmsImportHandler ingests one estimate document. Accepts a multipart upload
// (field "file", optional "format" and "auto_create_repair_order") or a JSON
// body with the document inline.
func bmsImportHandler() gin.HandlerFunc {
	logger := config.GetLogger()
	importer := workflow.NewBmsImporter(workflow.NewImportStore(), workflow.DefaultDialects())

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		shopId, ok := utils.GetShopIdFromContext(ctx)
		if !ok || shopId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userId, ok := utils.GetUserIdFromContext(ctx)
		if !ok || userId == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		req := &workflow.BmsImportRequest{
			ShopId:                shopId,
			UserId:                userId,
			AutoCreateRepairOrder: config.AutoCreateRepairOrderDefault(),
		}

		if strings.HasPrefix(c.ContentType(), "multipart/") {
			fileHeader, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
				return
			}
			if fileHeader.Size > maxEstimateFileSize {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
				return
			}
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxEstimateFileSize+1))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
				return
			}
			req.Data = data
			req.OriginalFileName = fileHeader.Filename
			req.FileSize = fileHeader.Size
			req.Format = c.PostForm("format")
			if v := c.PostForm("auto_create_repair_order"); v != "" {
				req.AutoCreateRepairOrder = strings.EqualFold(v, "true") || v == "1"
			}
		} else {
			var body bmsImportJSONRequest
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			req.Data = []byte(body.Content)
			req.OriginalFileName = body.FileName
			req.FileSize = int64(len(body.Content))
			req.Format = body.Format
			if body.AutoCreateRepairOrder != nil {
				req.AutoCreateRepairOrder = *body.AutoCreateRepairOrder
			}
		}

		if req.Format == "" {
			req.Format = detectFormat(req.OriginalFileName, req.Data)
		}
		req.FileName = uuid.NewString() + filepath.Ext(req.OriginalFileName)

		result, err := importer.Run(ctx, req)
		if err != nil {
			var parseErr *workflow.ParseError
			var validationErr *workflow.ValidationError
			switch {
			case errors.As(err, &parseErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
			case errors.As(err, &validationErr):
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":    "estimate validation failed",
					"problems": validationErr.Problems,
				})
			default:
				config.LogError(logger, "imports.go", "bmsImportHandler", shopId, req.OriginalFileName, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
			}
			return
		}

		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		c.JSON(http.StatusOK, gin.H{
			"import":         result,
			"correlation_id": cid,
		})
	}
}

// detectFormat prefers the file extension, then sniffs the first non-space
// byte. The parser still rejects anything that doesn't actually parse.
func detectFormat(fileName string, data []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xml", ".bms":
		return workflow.FormatXML
	case ".json":
		return workflow.FormatJSON
	}
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '<':
			return workflow.FormatXML
		default:
			return workflow.FormatJSON
		}
	}
	return workflow.FormatXML
}

func listBmsImportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		shopId, ok := utils.GetShopIdFromContext(ctx)
		if !ok || shopId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var status *models.BmsImportStatus
		if v := strings.TrimSpace(c.Query("status")); v != "" {
			s := models.BmsImportStatus(v)
			status = &s
		}

		imports, err := models.GetBmsImports(ctx, shopId, status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"imports": imports})
	}
}

func getBmsImportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		shopId, ok := utils.GetShopIdFromContext(ctx)
		if !ok || shopId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		entry, err := models.GetBmsImport(ctx, shopId, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "import not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"import":   entry,
			"errors":   entry.DecodedErrors(),
			"warnings": entry.DecodedWarnings(),
		})
	}
}
