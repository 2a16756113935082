package store

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Alturino/spices/cart/internal/domain"
	"github.com/Alturino/spices/internal/repository"
)

func cartFromRow(row repository.Cart) domain.Cart {
	return domain.Cart{
		ID:                 row.ID,
		UserID:             row.UserID,
		AnonymousTokenHash: row.AnonymousTokenHash.String,
		Channel:            domain.Channel(row.Channel),
		Status:             domain.CartStatus(row.Status),
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}

func lineItemFromRow(row repository.CartItem) domain.LineItem {
	return domain.LineItem{
		ID:        row.ID,
		CartID:    row.CartID,
		ProductID: row.ProductID,
		VariantID: row.VariantID,
		Quantity:  row.Quantity,
		UnitPrice: repository.NullDecimalFromNumeric(row.UnitPrice),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func lineItemsFromRows(rows []repository.CartItem) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, lineItemFromRow(row))
	}
	return items
}

func tokenHash(identity domain.Identity) pgtype.Text {
	if !identity.IsAnonymous() {
		return pgtype.Text{}
	}
	return pgtype.Text{String: identity.Key(), Valid: true}
}
