package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/nexoshop/internal/catalog/application"
	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
	"github.com/wyfcoding/nexoshop/internal/session"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/response"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

// CatalogHandler 商品目录 HTTP 处理器
type CatalogHandler struct {
	query   *application.CatalogQueryService
	command *application.CatalogCommandService
}

// NewCatalogHandler 创建 HTTP 处理器
func NewCatalogHandler(query *application.CatalogQueryService, command *application.CatalogCommandService) *CatalogHandler {
	return &CatalogHandler{query: query, command: command}
}

// RegisterRoutes 注册前台路由
func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Home)
	router.GET("/products", h.ListProducts)
	router.GET("/products/category/:slug", h.ListProducts)
	router.GET("/products/:id/:slug", h.ProductDetail)
}

// RegisterAdminRoutes 注册后台商品路由
func (h *CatalogHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/products", h.AdminListProducts)
	admin.POST("/products", h.CreateProduct)
	admin.GET("/products/:id", h.AdminGetProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.POST("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
}

func (h *CatalogHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrBrandNotFound),
		errors.Is(err, domain.ErrCategoryNotFound) && c.Request.Method != http.MethodGet:
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "catalog request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c)
	}
}

// Home 首页
func (h *CatalogHandler) Home(c *gin.Context) {
	products, err := h.query.Home(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"products": products})
}

// ListProducts 商品列表，可按分类 slug、品牌、颜色与材质过滤
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	res, err := h.query.ListProducts(c.Request.Context(), application.StorefrontFilter{
		CategorySlug: c.Param("slug"),
		Brand:        c.Query("brand"),
		Color:        c.Query("color"),
		Material:     c.Query("material"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, res)
}

// ProductDetail 商品详情
func (h *CatalogHandler) ProductDetail(c *gin.Context) {
	id := utils.ParseUint(c.Param("id"))
	if id == 0 {
		response.NotFound(c, domain.ErrProductNotFound.Error())
		return
	}
	detail, err := h.query.ProductDetail(c.Request.Context(), id, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, detail)
}

// AdminListProducts 后台商品列表，支持分类、状态、关键字过滤与分页
func (h *CatalogHandler) AdminListProducts(c *gin.Context) {
	res, err := h.query.AdminListProducts(c.Request.Context(), application.AdminProductFilter{
		CategoryID: utils.ParseUint(c.Query("category")),
		Status:     c.Query("status"),
		Query:      strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	var pagination *utils.Pagination
	res.Products, pagination = utils.Paginate(res.Products, page, size)
	response.Success(c, gin.H{
		"products":   res.Products,
		"categories": res.Categories,
		"brands":     res.Brands,
		"filter":     res.Filter,
		"pagination": pagination,
	})
}

// AdminGetProduct 后台商品详情
func (h *CatalogHandler) AdminGetProduct(c *gin.Context) {
	detail, err := h.query.AdminProductDetail(c.Request.Context(), utils.ParseUint(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, detail)
}

// productRequest 商品表单，兼容 JSON 与表单提交
type productRequest struct {
	Name        string   `json:"name" form:"name" binding:"required,max=200"`
	Description string   `json:"description" form:"description"`
	Price       string   `json:"price" form:"price" binding:"required"`
	OfferPrice  string   `json:"offer_price" form:"offer_price"`
	Stock       int      `json:"stock" form:"stock" binding:"gte=0"`
	Available   bool     `json:"available" form:"available"`
	IsFeatured  bool     `json:"is_featured" form:"is_featured"`
	Gender      string   `json:"gender" form:"gender"`
	Color       string   `json:"color" form:"color"`
	Material    string   `json:"material" form:"material"`
	ImageURL    string   `json:"image_url" form:"image_url"`
	Category    string   `json:"category" form:"category" binding:"required"`
	Brand       string   `json:"brand" form:"brand"`
	Sizes       []string `json:"sizes" form:"sizes"`
	SizeStocks  []string `json:"size_stocks" form:"size_stocks"`
}

func (r productRequest) command() (application.ProductCommand, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return application.ProductCommand{}, errors.New("price must be a decimal number")
	}
	offer := decimal.Zero
	if s := strings.TrimSpace(r.OfferPrice); s != "" {
		if offer, err = decimal.NewFromString(s); err != nil {
			return application.ProductCommand{}, errors.New("offer_price must be a decimal number")
		}
	}
	return application.ProductCommand{
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		OfferPrice:  offer,
		Stock:       r.Stock,
		Available:   r.Available,
		IsFeatured:  r.IsFeatured,
		Gender:      r.Gender,
		Color:       r.Color,
		Material:    r.Material,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Brand:       r.Brand,
		Sizes:       r.Sizes,
		SizeStocks:  r.SizeStocks,
	}, nil
}

func (h *CatalogHandler) bindProduct(c *gin.Context) (application.ProductCommand, bool) {
	var req productRequest
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return application.ProductCommand{}, false
	}
	cmd, err := req.command()
	if err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return application.ProductCommand{}, false
	}
	return cmd, true
}

// CreateProduct 新建商品
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	cmd, ok := h.bindProduct(c)
	if !ok {
		return
	}
	p, err := h.command.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, `Producto "`+p.Name+`" creado exitosamente.`)
	response.Created(c, p)
}

// UpdateProduct 编辑商品
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id := utils.ParseUint(c.Param("id"))
	cmd, ok := h.bindProduct(c)
	if !ok {
		return
	}
	p, err := h.command.UpdateProduct(c.Request.Context(), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, `Producto "`+p.Name+`" actualizado exitosamente.`)
	response.Success(c, p)
}

// DeleteProduct 删除商品
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id := utils.ParseUint(c.Param("id"))
	if err := h.command.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, "Producto eliminado exitosamente.")
	response.Redirect(c, "/accounts/admin-lite/products", gin.H{"deleted": id})
}
