package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/cart/pkg/request"
	"github.com/Alturino/spices/cart/pkg/response"
	"github.com/Alturino/spices/internal/constants"
	inHttp "github.com/Alturino/spices/internal/http"
	inOtel "github.com/Alturino/spices/internal/otel"
)

type CartService interface {
	GetCart(c context.Context, identity domain.Identity, ch domain.Channel) (response.Cart, error)
	AddToCart(c context.Context, identity domain.Identity, ch domain.Channel, req request.AddToCart) (response.Cart, error)
	UpdateItemQuantity(
		c context.Context,
		identity domain.Identity,
		ch domain.Channel,
		req request.UpdateItemQuantity,
	) (response.Cart, error)
	RemoveItem(c context.Context, identity domain.Identity, ch domain.Channel, req request.RemoveItem) (response.Cart, error)
	ClearCart(c context.Context, identity domain.Identity, ch domain.Channel) (response.ClearCart, error)
	Checkout(c context.Context, identity domain.Identity, ch domain.Channel) (response.Checkout, error)
}

type IdentityResolver interface {
	Resolve(req *http.Request, ch domain.Channel) domain.Identity
	Ensure(w http.ResponseWriter, id domain.Identity, ch domain.Channel) domain.Identity
	Forget(w http.ResponseWriter, ch domain.Channel)
}

// CartController mints an anonymous token on item mutations only.
type CartController struct {
	service    CartService
	identities IdentityResolver
}

func AttachCartController(mux *mux.Router, service CartService, identities IdentityResolver) {
	controller := CartController{service: service, identities: identities}

	router := mux.PathPrefix("/carts/{channel}").Subrouter()
	router.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.AddToCart).Methods(http.MethodPost)
	router.HandleFunc("/items/{itemId}", controller.UpdateItemQuantity).Methods(http.MethodPatch)
	router.HandleFunc("/items/{itemId}", controller.RemoveItem).Methods(http.MethodDelete)
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
}

func writeError(c context.Context, w http.ResponseWriter, err error) {
	kind := cartErrors.Classify(err)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": kind.StatusCode,
		"message":    kind.Message,
		"code":       kind.Code,
	})
}

func (ctrl CartController) fail(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	if cartErrors.Classify(err).StatusCode >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Err(err).Msg(err.Error())
	}
	writeError(c, w, err)
}

// channel reads the channel path value. It is the only place the channel comes from.
func channel(c context.Context, r *http.Request) (domain.Channel, error) {
	req := request.Cart{Channel: mux.Vars(r)["channel"]}
	if err := request.Validate(c, req); err != nil {
		return "", err
	}
	ch, err := domain.ParseChannel(req.Channel)
	if err != nil {
		return "", fmt.Errorf("%w: %w", cartErrors.NewValidationError("channel", "must be b2c or b2b"), err)
	}
	return ch, nil
}

func itemID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["itemId"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", cartErrors.NewValidationError("itemId", "must be a uuid"), err)
	}
	return id, nil
}

func decode(r *http.Request, body interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		return fmt.Errorf("%w: %w", cartErrors.NewValidationError("body", "must be a json object"), err)
	}
	return nil
}

func (ctrl CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController GetCart").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating channel").Logger()
	ch, err := channel(c, r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(constants.KEY_CHANNEL, ch.String()).Logger()

	identity := ctrl.identities.Resolve(r.WithContext(c), ch)

	logger = logger.With().Str(constants.KEY_PROCESS, "getting cart").Logger()
	logger.Debug().Msg("getting cart")
	c = logger.WithContext(c)
	cart, err := ctrl.service.GetCart(c, identity, ch)
	if err != nil {
		ctrl.fail(c, w, span, logger, fmt.Errorf("failed getting cart with error=%w", err))
		return
	}
	logger.Debug().Int(constants.KEY_CART_ITEMS_COUNT, len(cart.Items)).Msg("got cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found cart",
		"data": map[string]interface{}{
			"cart": cart,
		},
	})
}

func (ctrl CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController AddToCart").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating channel").Logger()
	ch, err := channel(c, r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(constants.KEY_CHANNEL, ch.String()).Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Debug().Msg("decoding request body")
	reqBody := request.AddToCart{}
	if err := decode(r, &reqBody); err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger.Debug().Msg("decoded request body")

	identity := ctrl.identities.Resolve(r.WithContext(c), ch)
	identity = ctrl.identities.Ensure(w, identity, ch)

	logger = logger.With().Str(constants.KEY_PROCESS, "adding to cart").Logger()
	logger.Debug().Msg("adding to cart")
	c = logger.WithContext(c)
	cart, err := ctrl.service.AddToCart(c, identity, ch, reqBody)
	if err != nil {
		ctrl.fail(c, w, span, logger, fmt.Errorf("failed adding to cart with error=%w", err))
		return
	}
	logger.Info().Msg("added to cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully added to cart",
		"data": map[string]interface{}{
			"cart": cart,
		},
	})
}

func (ctrl CartController) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController UpdateItemQuantity").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating path values").Logger()
	ch, err := channel(c, r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	id, err := itemID(r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().
		Str(constants.KEY_CHANNEL, ch.String()).
		Str(constants.KEY_CART_ITEM_ID, id.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Debug().Msg("decoding request body")
	reqBody := request.UpdateItemQuantity{}
	if err := decode(r, &reqBody); err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	reqBody.ItemID = id
	logger.Debug().Msg("decoded request body")

	identity := ctrl.identities.Resolve(r.WithContext(c), ch)
	identity = ctrl.identities.Ensure(w, identity, ch)

	logger = logger.With().Str(constants.KEY_PROCESS, "updating item quantity").Logger()
	logger.Debug().Msg("updating item quantity")
	c = logger.WithContext(c)
	cart, err := ctrl.service.UpdateItemQuantity(c, identity, ch, reqBody)
	if err != nil {
		ctrl.fail(c, w, span, logger, fmt.Errorf("failed updating item quantity with error=%w", err))
		return
	}
	logger.Info().Msg("updated item quantity")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated item quantity",
		"data": map[string]interface{}{
			"cart": cart,
		},
	})
}

func (ctrl CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController RemoveItem").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating path values").Logger()
	ch, err := channel(c, r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	id, err := itemID(r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().
		Str(constants.KEY_CHANNEL, ch.String()).
		Str(constants.KEY_CART_ITEM_ID, id.String()).
		Logger()

	identity := ctrl.identities.Resolve(r.WithContext(c), ch)
	identity = ctrl.identities.Ensure(w, identity, ch)

	logger = logger.With().Str(constants.KEY_PROCESS, "removing item").Logger()
	logger.Debug().Msg("removing item")
	c = logger.WithContext(c)
	cart, err := ctrl.service.RemoveItem(c, identity, ch, request.RemoveItem{ItemID: id})
	if err != nil {
		ctrl.fail(c, w, span, logger, fmt.Errorf("failed removing item with error=%w", err))
		return
	}
	logger.Info().Msg("removed item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed item",
		"data": map[string]interface{}{
			"cart": cart,
		},
	})
}

func (ctrl CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController ClearCart").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating channel").Logger()
	ch, err := channel(c, r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(constants.KEY_CHANNEL, ch.String()).Logger()

	identity := ctrl.identities.Resolve(r.WithContext(c), ch)

	logger = logger.With().Str(constants.KEY_PROCESS, "clearing cart").Logger()
	logger.Debug().Msg("clearing cart")
	c = logger.WithContext(c)
	cleared, err := ctrl.service.ClearCart(c, identity, ch)
	if err != nil {
		ctrl.fail(c, w, span, logger, fmt.Errorf("failed clearing cart with error=%w", err))
		return
	}
	if cleared.ForgetToken {
		ctrl.identities.Forget(w, ch)
	}
	logger.Info().Int64(constants.KEY_CART_ITEMS_COUNT, cleared.RemovedItems).Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully cleared cart",
		"data": map[string]interface{}{
			"cart": cleared,
		},
	})
}

func (ctrl CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController Checkout").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating channel").Logger()
	ch, err := channel(c, r)
	if err != nil {
		ctrl.fail(c, w, span, logger, err)
		return
	}
	logger = logger.With().Str(constants.KEY_CHANNEL, ch.String()).Logger()

	identity := ctrl.identities.Resolve(r.WithContext(c), ch)

	logger = logger.With().Str(constants.KEY_PROCESS, "checking out cart").Logger()
	logger.Debug().Msg("checking out cart")
	c = logger.WithContext(c)
	summary, err := ctrl.service.Checkout(c, identity, ch)
	if err != nil {
		ctrl.fail(c, w, span, logger, fmt.Errorf("failed checking out cart with error=%w", err))
		return
	}
	logger.Info().Str(constants.KEY_CART_ID, summary.CartID.String()).Msg("checked out cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("checked out cartId=%s", summary.CartID.String()),
		"data": map[string]interface{}{
			"checkout": summary,
		},
	})
}
