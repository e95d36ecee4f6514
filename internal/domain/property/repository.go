package property

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository reads properties and records their sale
type PropertyRepository interface {
	// FindByIDForOwner returns ErrNotFound for missing or foreign properties
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Property, error)

	// FindAllForOwner lists an owner's properties, active and sold
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error)

	// RecordSale stores the sale and the property's sold status in one transaction
	RecordSale(ctx context.Context, p *Property, sale *Sale) error
}

// TransactionRepository reads ledger transactions
type TransactionRepository interface {
	// FindByPropertyForOwner lists a property's transactions in the given categories
	FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID, categories ...TransactionCategory) ([]Transaction, error)

	// FindAllForOwner lists all of an owner's transactions in the given categories
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, categories ...TransactionCategory) ([]Transaction, error)
}

// SaleRepository reads recorded sales
type SaleRepository interface {
	// FindByPropertyForOwner returns ErrNotFound when no sale was recorded
	FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) (*Sale, error)

	// FindAllForOwner lists an owner's sales
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]Sale, error)
}
