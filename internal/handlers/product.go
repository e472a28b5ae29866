package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pinst/internal/models"
	storage "pinst/internal/services/storage"
	"pinst/internal/utils"
)

type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	StockCount  *int     `json:"stockCount"`
	DownloadURL *string  `json:"downloadUrl"`
	Features    []string `json:"features"`
}

// ListProducts godoc
// @Summary Каталог товаров
// @Description Фильтры: type (license|custom), category, q (поиск по имени), inStock
// @Tags products
// @Produce json
// @Param type query string false "тип товара"
// @Param category query string false "категория"
// @Param q query string false "поиск по имени"
// @Success 200 {array} models.Product
// @Router /products [get]
func ListProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&models.Product{})
		if typ := c.Query("type"); typ != "" {
			q = q.Where("type = ?", typ)
		}
		if cat := c.Query("category"); cat != "" {
			q = q.Where("category = ?", cat)
		}
		if search := c.Query("q"); search != "" {
			q = q.Where("name LIKE ?", "%"+search+"%")
		}
		if c.Query("inStock") == "true" {
			q = q.Where("in_stock = ?", true)
		}
		limit, offset := parsePagination(c)
		var products []models.Product
		if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetProduct godoc
// @Summary Карточка товара
// @Tags products
// @Produce json
// @Param id path string true "ID товара"
// @Success 200 {object} models.Product
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [get]
func GetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func productFromRequest(r ProductRequest) (*models.Product, string) {
	if r.Name == "" || r.Price == "" {
		return nil, "missing fields"
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil || price.IsNegative() {
		return nil, "invalid price"
	}
	typ := models.ProductType(r.Type)
	if typ != models.ProductTypeLicense && typ != models.ProductTypeCustom {
		return nil, "invalid type"
	}
	features := datatypes.JSON([]byte("[]"))
	if len(r.Features) > 0 {
		b, err := json.Marshal(r.Features)
		if err != nil {
			return nil, "invalid features"
		}
		features = datatypes.JSON(b)
	}
	return &models.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		Type:        typ,
		Category:    r.Category,
		Image:       r.Image,
		InStock:     true,
		StockCount:  r.StockCount,
		DownloadURL: r.DownloadURL,
		Features:    features,
	}, ""
}

// CreateProduct godoc
// @Summary Создать товар
// @Description Только администратор. Картинку можно загрузить multipart-полем file.
// @Tags products
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param input body ProductRequest false "данные товара"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/products [post]
func CreateProduct(db *gorm.DB, st storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r ProductRequest
		var imageURL string
		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			r = ProductRequest{
				Name:        c.PostForm("name"),
				Description: c.PostForm("description"),
				Price:       c.PostForm("price"),
				Type:        c.PostForm("type"),
				Category:    c.PostForm("category"),
			}
			file, err := c.FormFile("file")
			if err == nil {
				ext := strings.ToLower(filepath.Ext(file.Filename))
				if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
					c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported file type"})
					return
				}
				f, err := file.Open()
				if err != nil {
					c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
					return
				}
				defer f.Close()
				id, err := utils.GenerateNanoID()
				if err != nil {
					c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "id error"})
					return
				}
				objectName := id + ext
				mimeType := "image/png"
				if ext != ".png" {
					mimeType = "image/jpeg"
				}
				if _, err := st.Upload(c.Request.Context(), objectName, f, file.Size, mimeType); err != nil {
					c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
					return
				}
				url, err := st.GetURL(c.Request.Context(), objectName, 24*time.Hour)
				if err != nil {
					c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
					return
				}
				imageURL = url
			}
		} else {
			if err := c.BindJSON(&r); err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
				return
			}
		}
		product, msg := productFromRequest(r)
		if product == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
			return
		}
		if imageURL != "" {
			product.Image = imageURL
		}
		if err := db.Create(product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// UpdateProduct godoc
// @Summary Обновить товар
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID товара"
// @Param input body ProductRequest true "данные товара"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/products/{id} [put]
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var existing models.Product
		if err := db.Where("id = ?", c.Param("id")).First(&existing).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid product"})
			return
		}
		var r ProductRequest
		if err := c.BindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		product, msg := productFromRequest(r)
		if product == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
			return
		}
		product.ID = existing.ID
		product.InStock = existing.InStock
		product.CreatedAt = existing.CreatedAt
		if product.Image == "" {
			product.Image = existing.Image
		}
		if err := db.Save(product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProduct godoc
// @Summary Снять товар с продажи
// @Description Товар не удаляется физически, а помечается как отсутствующий:
// на него могут ссылаться заказы и лицензии.
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID товара"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/products/{id} [delete]
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid product"})
			return
		}
		if err := db.Model(&product).Update("in_stock", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
	}
}
