package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/ports"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

// PurchaseRequestUseCase opera sobre el agregado PurchaseRequest.
// Toda mutación (Create, Replace, Delete) corre en una sola transacción; las validaciones
// se hacen dentro de la misma tx, de modo que cualquier error revierte todo.
type PurchaseRequestUseCase struct {
	txRunner   ports.TxRunner
	prRepo     repository.PurchaseRequestRepository
	vendorName string
	now        func() time.Time
}

// NewPurchaseRequestUseCase construye el caso de uso. prRepo se usa solo para lecturas fuera de tx.
// vendorName vacío usa entity.DefaultVendorName.
func NewPurchaseRequestUseCase(
	txRunner ports.TxRunner,
	prRepo repository.PurchaseRequestRepository,
	vendorName string,
) *PurchaseRequestUseCase {
	if vendorName == "" {
		vendorName = entity.DefaultVendorName
	}
	return &PurchaseRequestUseCase{
		txRunner:   txRunner,
		prRepo:     prRepo,
		vendorName: vendorName,
		now:        time.Now,
	}
}

// ReplaceResult resultado de Replace. NeedsNotification es true cuando la solicitud acaba de pasar a PENDING.
type ReplaceResult struct {
	PurchaseRequest   *entity.PurchaseRequest
	NeedsNotification bool
}

// Create valida bodega e ítems, persiste la solicitud en DRAFT con una referencia temporal,
// asigna la referencia definitiva a partir del ID y guarda las líneas.
func (uc *PurchaseRequestUseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest) (*entity.PurchaseRequest, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos un ítem")
	}
	now := uc.now()
	var out *entity.PurchaseRequest

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := ensureWarehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}
		items, err := buildItems(ctx, repos.Products, in.Items, now)
		if err != nil {
			return err
		}

		pr := &entity.PurchaseRequest{
			Reference:   entity.NewTemporaryReference(now),
			WarehouseID: in.WarehouseID,
			Status:      entity.StatusDraft,
			VendorName:  uc.vendorName,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.PurchaseRequests.Create(ctx, pr); err != nil {
			return err
		}
		if err := pr.AssignReference(); err != nil {
			return err
		}
		if err := repos.PurchaseRequests.Update(ctx, pr); err != nil {
			return err
		}
		if err := repos.PurchaseRequests.ReplaceItems(ctx, pr.ID, items); err != nil {
			return err
		}

		out, err = repos.PurchaseRequests.GetDetail(ctx, pr.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Replace actualiza una solicitud DRAFT bajo bloqueo exclusivo de fila.
// Items, si viene (no nil), reemplaza la colección completa. Status solo admite PENDING; vacío se ignora.
// Una solicitud fuera de DRAFT falla con ErrInvalidState sin importar qué campos se envíen.
func (uc *PurchaseRequestUseCase) Replace(ctx context.Context, id int64, in dto.UpdatePurchaseRequest) (*ReplaceResult, error) {
	now := uc.now()
	result := &ReplaceResult{}

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		pr, err := repos.PurchaseRequests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if pr == nil {
			return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, id)
		}
		if err := pr.EnsureEditable(); err != nil {
			return err
		}

		if in.WarehouseID != nil {
			if err := ensureWarehouse(ctx, repos.Warehouses, *in.WarehouseID); err != nil {
				return err
			}
			pr.WarehouseID = *in.WarehouseID
		}

		if in.Items != nil {
			if len(in.Items) == 0 {
				return domain.Invalid("items", "se requiere al menos un ítem")
			}
			items, err := buildItems(ctx, repos.Products, in.Items, now)
			if err != nil {
				return err
			}
			if err := repos.PurchaseRequests.ReplaceItems(ctx, pr.ID, items); err != nil {
				return err
			}
		}

		if in.Status != nil && *in.Status != "" {
			next, err := entity.ParseStatus(*in.Status)
			if err != nil {
				return err
			}
			notify, err := pr.RequestStatus(next)
			if err != nil {
				return err
			}
			result.NeedsNotification = notify
		}

		pr.UpdatedAt = now
		if err := repos.PurchaseRequests.Update(ctx, pr); err != nil {
			return err
		}

		result.PurchaseRequest, err = repos.PurchaseRequests.GetDetail(ctx, pr.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete elimina una solicitud DRAFT y sus líneas.
func (uc *PurchaseRequestUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		pr, err := repos.PurchaseRequests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if pr == nil {
			return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, id)
		}
		if err := pr.EnsureEditable(); err != nil {
			return err
		}
		return repos.PurchaseRequests.Delete(ctx, pr.ID)
	})
}

// Get devuelve la solicitud hidratada (ítems, productos y bodega).
func (uc *PurchaseRequestUseCase) Get(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	pr, err := uc.prRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, id)
	}
	return pr, nil
}

// List devuelve el resumen de todas las solicitudes con su total de unidades.
func (uc *PurchaseRequestUseCase) List(ctx context.Context) ([]*entity.PurchaseRequestSummary, error) {
	return uc.prRepo.List(ctx)
}

func ensureWarehouse(ctx context.Context, repo repository.WarehouseRepository, id int64) error {
	if id <= 0 {
		return domain.Invalid("warehouseId", "es requerido")
	}
	wh, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.Invalid("warehouseId", "bodega no encontrada: %d", id)
	}
	return nil
}

// buildItems valida cada línea (producto existente, cantidad entera positiva) y arma las entidades.
func buildItems(ctx context.Context, repo repository.ProductRepository, in []dto.PurchaseRequestItemInput, now time.Time) ([]entity.PurchaseRequestItem, error) {
	items := make([]entity.PurchaseRequestItem, 0, len(in))
	for i, it := range in {
		if it.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser un entero positivo")
		}
		if it.ProductID <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].productId", i), "es requerido")
		}
		product, err := repo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].productId", i), "producto no encontrado: %d", it.ProductID)
		}
		items = append(items, entity.PurchaseRequestItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			Quantity:    it.Quantity,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return items, nil
}
