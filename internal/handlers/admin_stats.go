package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pinst/internal/models"
)

type TopProduct struct {
	Product    models.Product `json:"product"`
	SalesCount int64          `json:"salesCount"`
}

type AdminStatsResponse struct {
	TotalRevenue  string         `json:"totalRevenue"`
	TotalOrders   int64          `json:"totalOrders"`
	TotalUsers    int64          `json:"totalUsers"`
	TotalProducts int64          `json:"totalProducts"`
	RecentOrders  []models.Order `json:"recentOrders"`
	TopProducts   []TopProduct   `json:"topProducts"`
}

// AdminStats godoc
// @Summary Сводная статистика магазина
// @Description Выручка считается по завершённым транзакциям покупок,
// включая оплаченные дополнительные счета кастомных заказов.
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} AdminStatsResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/stats [get]
func AdminStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var resp AdminStatsResponse

		var txs []models.Transaction
		if err := db.Where("type = ? AND status = ?",
			models.TransactionTypePurchase, models.TransactionStatusCompleted).
			Find(&txs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		revenue := decimal.Zero
		for _, t := range txs {
			revenue = revenue.Add(t.Amount)
		}
		resp.TotalRevenue = revenue.String()

		db.Model(&models.Order{}).Count(&resp.TotalOrders)
		db.Model(&models.User{}).Count(&resp.TotalUsers)
		db.Model(&models.Product{}).Count(&resp.TotalProducts)

		if err := db.Order("created_at desc").Limit(5).Find(&resp.RecentOrders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}

		// продажи по товарам: лицензии + кастомные заказы
		type row struct {
			ProductID string
			Cnt       int64
		}
		counts := map[string]int64{}
		var licRows []row
		db.Model(&models.License{}).Select("product_id, count(*) as cnt").Group("product_id").Scan(&licRows)
		for _, r := range licRows {
			counts[r.ProductID] += r.Cnt
		}
		var coRows []row
		db.Model(&models.CustomOrder{}).Select("product_id, count(*) as cnt").Group("product_id").Scan(&coRows)
		for _, r := range coRows {
			counts[r.ProductID] += r.Cnt
		}
		for pid, cnt := range counts {
			var p models.Product
			if err := db.Where("id = ?", pid).First(&p).Error; err != nil {
				continue
			}
			resp.TopProducts = append(resp.TopProducts, TopProduct{Product: p, SalesCount: cnt})
		}
		// крупные продажи сверху, при равенстве — по ID, чтобы порядок был стабилен
		sort.Slice(resp.TopProducts, func(i, j int) bool {
			a, b := resp.TopProducts[i], resp.TopProducts[j]
			if a.SalesCount != b.SalesCount {
				return a.SalesCount > b.SalesCount
			}
			return a.Product.ID < b.Product.ID
		})
		if len(resp.TopProducts) > 5 {
			resp.TopProducts = resp.TopProducts[:5]
		}

		c.JSON(http.StatusOK, resp)
	}
}
