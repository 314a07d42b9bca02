package service

import "errors"

// Errores de negocio exportados (los usa el controller).
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrWrongOwner         = errors.New("user does not own the product")
	ErrNotMerchant        = errors.New("user is not a merchant")
	ErrIncorrectPicFormat = errors.New("incorrect picture format")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrReviewNotAllowed   = errors.New("product not purchased or order line not completed")
	ErrUpdateQuantity     = errors.New("error updating quantity of some products")
)

// QuantityError lista los productos que impidieron aplicar el lote.
type QuantityError struct {
	Failed []string
}

func (e *QuantityError) Error() string {
	return ErrUpdateQuantity.Error()
}

func (e *QuantityError) Is(target error) bool {
	return target == ErrUpdateQuantity
}
