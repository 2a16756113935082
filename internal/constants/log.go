package constants

const (
	KEY_APP_NAME           = "app"
	KEY_BODY               = "body"
	KEY_CACHE_KEY          = "cacheKey"
	KEY_CART               = "cart"
	KEY_CART_ID            = "cartId"
	KEY_CART_ITEM_ID       = "cartItemId"
	KEY_CART_ITEM_QUANTITY = "cartItemQuantity"
	KEY_CART_ITEMS         = "cartItems"
	KEY_CART_ITEMS_COUNT   = "cartItemsCount"
	KEY_CART_RESPONSE      = "cartResponse"
	KEY_CHANNEL            = "channel"
	KEY_CONFIG             = "config"
	KEY_DB_URL             = "dbUrl"
	KEY_FREE_SHIPPING      = "freeShipping"
	KEY_HEADER             = "header"
	KEY_IDENTITY_KIND      = "identityKind"
	KEY_IDENTITY_KEY       = "identityKey"
	KEY_PATH_VALUES        = "pathValues"
	KEY_PROCESS            = "process"
	KEY_PRODUCT            = "product"
	KEY_PRODUCT_ID         = "productId"
	KEY_REQUEST            = "request"
	KEY_REQUEST_BODY       = "requestBody"
	KEY_REQUEST_HOST       = "host"
	KEY_REQUEST_ID         = "requestId"
	KEY_REQUEST_IP         = "requesterIP"
	KEY_REQUEST_METHOD     = "requestMethod"
	KEY_REQUEST_URI        = "requestURI"
	KEY_REQUEST_URL        = "requestURL"
	KEY_RULE               = "rule"
	KEY_SPAN_ID            = "spanId"
	KEY_SUBTOTAL           = "subtotal"
	KEY_TAG                = "tag"
	KEY_TOKEN_SUBJECT      = "tokenSubject"
	KEY_TRACE_ID           = "traceId"
	KEY_USER_ID            = "userId"
	KEY_VARIANT_ID         = "variantId"
)
