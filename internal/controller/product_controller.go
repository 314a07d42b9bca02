package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"catalog-service/internal/dto"
	"catalog-service/internal/middleware"
	"catalog-service/internal/model"
	"catalog-service/internal/service"
	"catalog-service/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgProductNotFound   = "Product not found."
	msgProductNotExist   = "Product does not exist."
	msgUserNotFound      = "User not found."
	msgBadPicture        = "We only accept jpg, png, jpeg file formats."
	msgBadCategory       = "Please only use Fashion & Accessories, Electronics, Toys & Games, Home & Living for category."
	msgBadProductFields  = "Please provide a name, a price, a quantity and a category for the product."
	msgNoUpdatePerm      = "You do not have permission to update the product."
	msgNoAddPerm         = "You do not have permission to add a product."
	msgNoDeletePerm      = "You do not have permission to delete the product. Please log in with the correct user."
	msgProductDeleted    = "Product deleted."
	msgReviewNotAllowed  = "You cannot review a product that you didn't purchase or the status is not completed."
	msgBadRating         = "Rating must be between 1 and 5."
	msgQuantityFailed    = "There was an error while updating quantity of some products."
	msgGetFailed         = "Error while retrieving the product. Please try again."
	msgListFailed        = "Error retrieving products."
	msgActionFailed      = "Error while performing the action. Try again."
	msgDeleteFailed      = "Error deleting product. Try again."
	msgReviewFailed      = "Error while reviewing product. Try again."
	msgQuantityReqFailed = "Error while updating quantity. Try again."
	msgBadRequest        = "Invalid request body."
)

// Catalog es lo que el controller necesita del servicio.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*dto.ProductDTO, error)
	ListProducts(ctx context.Context, page int) ([]dto.ProductDTO, error)
	CreateProduct(ctx context.Context, userID string, in service.ProductInput, img *service.ImageUpload) (*model.Product, error)
	UpdateProduct(ctx context.Context, userID, productID string, in service.ProductInput, img *service.ImageUpload) (*model.Product, error)
	DeleteProduct(ctx context.Context, userID, productID string) error
	PostReview(ctx context.Context, userID, productID string, in service.ReviewInput) (*model.Review, *model.Product, error)
	UpdateQuantities(ctx context.Context, userID string, items []service.QuantityChange) error
}

type ImageReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type ProductController struct {
	Service Catalog
	Images  ImageReader
}

func NewProductController(s Catalog, images ImageReader) *ProductController {
	return &ProductController{Service: s, Images: images}
}

// GET /api/product/:productId
func (ctl *ProductController) GetProduct(c *gin.Context) {
	p, err := ctl.Service.GetProduct(c.Request.Context(), c.Param("productId"))
	if errors.Is(err, service.ErrProductNotFound) {
		fail(c, http.StatusNotFound, msgProductNotFound)
		return
	}
	if err != nil {
		internalError(c, err, msgGetFailed)
		return
	}
	c.JSON(http.StatusOK, dto.ProductResponse{Success: true, Product: *p})
}

// GET /api/product/all?page=N
func (ctl *ProductController) ListProducts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	products, err := ctl.Service.ListProducts(c.Request.Context(), page)
	if err != nil {
		internalError(c, err, msgListFailed)
		return
	}
	c.JSON(http.StatusOK, dto.ProductListResponse{Success: true, Products: products})
}

// GET /api/product/image/:name
func (ctl *ProductController) GetImage(c *gin.Context) {
	r, contentType, err := ctl.Images.Open(c.Request.Context(), c.Param("name"))
	if errors.Is(err, storage.ErrImageNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("reading product image")
		c.Status(http.StatusInternalServerError)
		return
	}
	defer r.Close()
	c.DataFromReader(http.StatusOK, -1, contentType, r, nil)
}

// POST /api/product/admin crea un producto (multipart)
func (ctl *ProductController) CreateProduct(c *gin.Context) {
	form, img, ok := ctl.bindProductForm(c)
	if !ok {
		return
	}
	defer closeUpload(img)

	p, err := ctl.Service.CreateProduct(c.Request.Context(), form.UserID, productInput(form), img)
	if err != nil {
		ctl.productError(c, err)
		return
	}
	c.JSON(http.StatusCreated, savedResponse(p))
}

// PATCH /api/product/admin actualiza el producto productId (multipart)
func (ctl *ProductController) UpdateProduct(c *gin.Context) {
	form, img, ok := ctl.bindProductForm(c)
	if !ok {
		return
	}
	defer closeUpload(img)

	p, err := ctl.Service.UpdateProduct(c.Request.Context(), form.UserID, form.ProductID, productInput(form), img)
	if err != nil {
		ctl.productError(c, err)
		return
	}
	c.JSON(http.StatusOK, savedResponse(p))
}

// DELETE /api/product/admin/:productId
func (ctl *ProductController) DeleteProduct(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil || !middleware.SameUser(c, req.UserID) {
		fail(c, http.StatusUnauthorized, middleware.LoginFirstMessage)
		return
	}

	err := ctl.Service.DeleteProduct(c.Request.Context(), req.UserID, c.Param("productId"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: msgProductDeleted})
	case errors.Is(err, service.ErrWrongOwner):
		fail(c, http.StatusForbidden, msgNoDeletePerm)
	case errors.Is(err, service.ErrProductNotFound):
		fail(c, http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, msgUserNotFound)
	default:
		internalError(c, err, msgDeleteFailed)
	}
}

// POST /api/product/review/:productId
func (ctl *ProductController) PostReview(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	if !middleware.SameUser(c, req.UserID) {
		fail(c, http.StatusUnauthorized, middleware.LoginFirstMessage)
		return
	}

	rev, p, err := ctl.Service.PostReview(c.Request.Context(), req.UserID, c.Param("productId"), service.ReviewInput{
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, dto.ReviewResponse{
			Success: true,
			Comment: rev.Comment,
			Rating:  rev.Rating,
			Product: dto.ReviewedProductDTO{ProductID: p.ID.Hex(), Name: p.Name, Price: p.Price},
		})
	case errors.Is(err, service.ErrReviewNotAllowed):
		fail(c, http.StatusForbidden, msgReviewNotAllowed)
	case errors.Is(err, service.ErrProductNotFound):
		fail(c, http.StatusNotFound, msgProductNotExist)
	case errors.Is(err, service.ErrInvalidRating):
		fail(c, http.StatusBadRequest, msgBadRating)
	case errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, msgUserNotFound)
	default:
		internalError(c, err, msgReviewFailed)
	}
}

// POST /api/product ajuste de stock por lote
func (ctl *ProductController) UpdateQuantities(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	if !middleware.SameUser(c, req.UserID) {
		fail(c, http.StatusUnauthorized, middleware.LoginFirstMessage)
		return
	}

	items := make([]service.QuantityChange, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, service.QuantityChange{ProductID: p.ID, Qty: p.Qty})
	}

	err := ctl.Service.UpdateQuantities(c.Request.Context(), req.UserID, items)
	var qe *service.QuantityError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.MessageResponse{Success: true})
	case errors.As(err, &qe):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgQuantityFailed, Failed: qe.Failed})
	case errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, msgUserNotFound)
	default:
		internalError(c, err, msgQuantityReqFailed)
	}
}

// bindProductForm valida sesión, campos y archivo. Si devuelve ok=false ya respondió.
func (ctl *ProductController) bindProductForm(c *gin.Context) (dto.ProductForm, *service.ImageUpload, bool) {
	var form dto.ProductForm
	if !middleware.SameUser(c, c.PostForm("userId")) {
		fail(c, http.StatusUnauthorized, middleware.LoginFirstMessage)
		return form, nil, false
	}
	if err := c.ShouldBind(&form); err != nil {
		fail(c, http.StatusBadRequest, msgBadProductFields)
		return form, nil, false
	}

	fh, err := c.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil, true
	}
	if err != nil {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return form, nil, false
	}
	if fh.Filename == "" {
		return form, nil, true
	}
	f, err := fh.Open()
	if err != nil {
		internalError(c, err, msgActionFailed)
		return form, nil, false
	}
	return form, &service.ImageUpload{Filename: fh.Filename, Body: f}, true
}

func (ctl *ProductController) productError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIncorrectPicFormat):
		fail(c, http.StatusBadRequest, msgBadPicture)
	case errors.Is(err, service.ErrInvalidCategory):
		fail(c, http.StatusBadRequest, msgBadCategory)
	case errors.Is(err, service.ErrWrongOwner):
		fail(c, http.StatusForbidden, msgNoUpdatePerm)
	case errors.Is(err, service.ErrNotMerchant):
		fail(c, http.StatusForbidden, msgNoAddPerm)
	case errors.Is(err, service.ErrProductNotFound):
		fail(c, http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		fail(c, http.StatusNotFound, msgUserNotFound)
	default:
		internalError(c, err, msgActionFailed)
	}
}

func closeUpload(img *service.ImageUpload) {
	if img == nil {
		return
	}
	if cl, ok := img.Body.(io.Closer); ok {
		_ = cl.Close()
	}
}

func productInput(f dto.ProductForm) service.ProductInput {
	return service.ProductInput{
		Name:     f.Name,
		Price:    f.Price,
		Desc:     f.Desc,
		Qty:      f.Qty,
		Category: f.Category,
	}
}

func savedResponse(p *model.Product) dto.ProductSavedResponse {
	return dto.ProductSavedResponse{
		Success:  true,
		ID:       p.ID.Hex(),
		Name:     p.Name,
		Price:    p.Price,
		Desc:     p.Desc,
		Qty:      p.Qty,
		Img:      p.Img,
		Category: string(p.Category),
		UserID:   p.UserID.Hex(),
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, dto.MessageResponse{Message: message})
}

// internalError loguea el error real y responde un mensaje genérico.
func internalError(c *gin.Context, err error, message string) {
	zerolog.Ctx(c.Request.Context()).Error().Stack().Err(err).
		Str("route", c.FullPath()).
		Msg("unexpected error")
	fail(c, http.StatusInternalServerError, message)
}
