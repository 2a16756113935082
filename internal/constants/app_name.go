package constants

const (
	APP_CART_SERVICE   = "cart-service"
	APP_CART_MIGRATION = "cart-migration"
	APP_MAIN_SPICES    = "main spices"
)
