package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

// requireLocation valida que la ubicación exista y pertenezca a la sucursal.
func requireLocation(ctx context.Context, master repository.MasterDataRepository, branchID, locationID string) (*entity.Location, error) {
	loc, err := master.GetLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("consultar ubicación: %w", err)
	}
	if loc == nil || loc.BranchID != branchID {
		return nil, fmt.Errorf("%w: ubicación %s en sucursal %s", domain.ErrNotFound, locationID, branchID)
	}
	return loc, nil
}

// requirePart valida que el repuesto exista en el catálogo.
func requirePart(ctx context.Context, master repository.MasterDataRepository, partID string) (*entity.Part, error) {
	part, err := master.GetPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("consultar repuesto: %w", err)
	}
	if part == nil {
		return nil, fmt.Errorf("%w: repuesto %s", domain.ErrNotFound, partID)
	}
	return part, nil
}

// Cantidades y costos se persisten como NUMERIC(18,4).
const (
	storedScale         = 4
	storedIntegerDigits = 14
)

var storedMax = decimal.New(1, storedIntegerDigits)

// requireScale rechaza valores que la base de datos redondearía o no podría guardar.
func requireScale(field string, d decimal.Decimal) error {
	if d.Exponent() < -storedScale && !d.Equal(d.Round(storedScale)) {
		return fmt.Errorf("%w: %s admite máximo %d decimales", domain.ErrInvalidInput, field, storedScale)
	}
	if d.Abs().GreaterThanOrEqual(storedMax) {
		return fmt.Errorf("%w: %s excede %d dígitos enteros", domain.ErrInvalidInput, field, storedIntegerDigits)
	}
	return nil
}

// pageBounds aplica los mismos límites de paginación que los handlers.
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
