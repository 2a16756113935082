package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	inHttp "github.com/Alturino/spices/internal/http"
	"github.com/Alturino/spices/internal/log"
	inOtel "github.com/Alturino/spices/internal/otel"
)

const KEY_HEADER_IDEMPOTENCY_KEY = "Idempotency-Key"

// Handoff is what the order-creation flow receives for a checked out cart. IdentityKey is
// the user id, or the hash of the anonymous token.
type Handoff struct {
	CartID       uuid.UUID       `json:"cart_id"`
	Channel      string          `json:"channel"`
	IdentityKind string          `json:"identity_kind"`
	IdentityKey  string          `json:"identity_key"`
	Lines        []HandoffLine   `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingFee  decimal.Decimal `json:"shipping_fee"`
	Total        decimal.Decimal `json:"total"`
}

type HandoffLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	HasTax    bool            `json:"has_tax"`
}

type Receipt struct {
	OrderID string `json:"order_id"`
}

type Client struct {
	client *http.Client
	url    string
}

func NewClient(cfg config.Order) *Client {
	return &Client{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		url: cfg.URL,
	}
}

// Submit posts the handoff. The cart id is sent as the idempotency key so a retried
// checkout of the same cart does not create a second order.
func (cl *Client) Submit(c context.Context, handoff Handoff) (Receipt, error) {
	c, span := otel.Tracer.Start(c, "Client Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Client Submit").
		Str(constants.KEY_CART_ID, handoff.CartID.String()).
		Str(constants.KEY_CHANNEL, handoff.Channel).
		Str(constants.KEY_REQUEST_URL, cl.url).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "encoding handoff").Logger()
	body, err := json.Marshal(handoff)
	if err != nil {
		err = fmt.Errorf("failed encoding handoff with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Receipt{}, err
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "posting handoff").Logger()
	logger.Info().Msg("posting handoff")
	req, err := http.NewRequestWithContext(c, http.MethodPost, cl.url, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed creating handoff request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Receipt{}, err
	}
	req.Header.Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	req.Header.Set(KEY_HEADER_IDEMPOTENCY_KEY, handoff.CartID.String())
	if requestId := log.RequestIDFromContext(c); requestId != "" {
		req.Header.Set(inHttp.KEY_HEADER_REQUEST_ID, requestId)
	}

	resp, err := cl.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed posting handoff with error=%w: %w", cartErrors.ErrCheckoutFailure, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Receipt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		err = fmt.Errorf("order endpoint answered statusCode=%d with error=%w", resp.StatusCode, cartErrors.ErrCheckoutFailure)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Receipt{}, err
	}

	envelope := struct {
		Data Receipt `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("failed decoding order response with error=%w: %w", cartErrors.ErrCheckoutFailure, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Receipt{}, err
	}
	logger.Info().Str("orderId", envelope.Data.OrderID).Msg("posted handoff")

	return envelope.Data, nil
}
