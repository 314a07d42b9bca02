// dto.go
package dto

// ProductForm llega como multipart en /api/product/admin (POST y PATCH).
type ProductForm struct {
	UserID    string  `form:"userId" binding:"required"`
	ProductID string  `form:"productId"`
	Name      string  `form:"name" binding:"required"`
	Price     float64 `form:"price" binding:"gte=0"`
	Desc      string  `form:"desc"`
	Qty       int     `form:"qty" binding:"gte=0"`
	Category  string  `form:"category" binding:"required"`
}

// UserRequest es el cuerpo mínimo que identifica al cliente (p. ej. DELETE).
type UserRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type ReviewRequest struct {
	UserID  string `json:"userId" binding:"required"`
	OrderID string `json:"orderId" binding:"required"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type QuantityItem struct {
	ID  string `json:"id" binding:"required"`
	Qty int    `json:"qty"`
}

type UpdateQuantityRequest struct {
	UserID   string         `json:"userId" binding:"required"`
	Products []QuantityItem `json:"products" binding:"required,min=1,dive"`
}

type OwnerDTO struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type ReviewDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	User    string `json:"user"`
}

// ProductDTO es la vista desnormalizada de un producto (GET).
type ProductDTO struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    float64     `json:"price"`
	Desc     string      `json:"desc"`
	Qty      int         `json:"qty"`
	Img      string      `json:"img"`
	Category string      `json:"category"`
	User     OwnerDTO    `json:"user"`
	Reviews  []ReviewDTO `json:"reviews"`
}

type ProductResponse struct {
	Success bool       `json:"success"`
	Product ProductDTO `json:"product"`
}

type ProductListResponse struct {
	Success  bool         `json:"success"`
	Products []ProductDTO `json:"products"`
}

// ProductSavedResponse se devuelve al crear o actualizar un producto.
type ProductSavedResponse struct {
	Success  bool    `json:"success"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Desc     string  `json:"desc"`
	Qty      int     `json:"qty"`
	Img      string  `json:"img"`
	Category string  `json:"category"`
	UserID   string  `json:"userId"`
}

type ReviewedProductDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type ReviewResponse struct {
	Success bool               `json:"success"`
	Comment string             `json:"comment"`
	Rating  int                `json:"rating"`
	Product ReviewedProductDTO `json:"product"`
}

// MessageResponse cubre los casos success/message sin entidad.
type MessageResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}
