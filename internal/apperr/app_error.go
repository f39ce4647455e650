package apperr

import "github.com/huynhvq/inventory-tracker/pkg/zerror"

const (
	ValidationErrorCode    = "VALIDATION_FAILED"
	ProductNotFoundCode    = "PRODUCT_NOT_FOUND"
	SkuAlreadyExistsCode   = "SKU_ALREADY_EXISTS"
	StorageUnavailableCode = "STORAGE_UNAVAILABLE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "all fields are required")

	// InvalidRequestBodyErr covers bodies that fail to decode at all, as
	// opposed to well-formed bodies with missing or invalid fields.
	InvalidRequestBodyErr = zerror.NewValidationFailed(ValidationErrorCode, "invalid request body")

	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")

	// Duplicate sku is reported as a bad request rather than a conflict,
	// matching the public API contract.
	SkuAlreadyExistsErr = zerror.NewBadRequest(SkuAlreadyExistsCode, "sku already exists")

	StorageUnavailableErr = zerror.NewServiceUnavailable(StorageUnavailableCode, "storage unavailable")
)
