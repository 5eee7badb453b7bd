package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var (
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.PartRequestRepository   = (*PartRequestRepo)(nil)
)

// PurchaseOrderRepo órdenes de compra con sus líneas.
type PurchaseOrderRepo struct {
	v view
}

// Create guarda la orden. El número debe ser único por sucursal.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	stored := copyOrder(po)
	return r.v.write(func(d *data) error {
		if _, ok := d.orders[po.ID]; ok {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, po.ID)
		}
		for _, o := range d.orders {
			if o.BranchID == po.BranchID && o.OrderNumber == po.OrderNumber {
				return fmt.Errorf("%w: número de orden %s", domain.ErrDuplicate, po.OrderNumber)
			}
		}
		d.orders[po.ID] = stored
		return nil
	})
}

// GetByID devuelve una copia de la orden o nil.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	r.v.read(func(d *data) {
		if po, ok := d.orders[id]; ok {
			out = copyOrder(po)
		}
	})
	return out, nil
}

// GetForUpdate igual que GetByID: las transacciones en memoria ya están serializadas.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza estado, fechas y líneas de la orden.
func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	stored := copyOrder(po)
	return r.v.write(func(d *data) error {
		if _, ok := d.orders[po.ID]; !ok {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, po.ID)
		}
		for _, it := range stored.Items {
			if it.ReceivedQty.GreaterThan(it.OrderedQty) {
				return fmt.Errorf("%w: repuesto %s", domain.ErrOverReceive, it.PartID)
			}
		}
		d.orders[po.ID] = stored
		return nil
	})
}

// List órdenes de la sucursal, de la más reciente a la más antigua.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	var list []*entity.PurchaseOrder
	r.v.read(func(d *data) {
		for _, po := range d.orders {
			if po.BranchID == f.BranchID && (f.Status == "" || po.Status == f.Status) {
				list = append(list, copyOrder(po))
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].OrderNumber > list[j].OrderNumber
	})
	return page(list, f.Limit, f.Offset), len(list), nil
}

// PartRequestRepo solicitudes de repuesto del módulo de órdenes de trabajo.
type PartRequestRepo struct {
	v view
}

// GetByID devuelve una copia de la solicitud o nil.
func (r *PartRequestRepo) GetByID(ctx context.Context, id string) (*entity.PartRequest, error) {
	var out *entity.PartRequest
	r.v.read(func(d *data) {
		if req, ok := d.partRequests[id]; ok {
			out = shallow(req)
		}
	})
	return out, nil
}

// Update guarda estado y vínculo con la orden de compra.
func (r *PartRequestRepo) Update(ctx context.Context, req *entity.PartRequest) error {
	stored := shallow(req)
	return r.v.write(func(d *data) error {
		if _, ok := d.partRequests[req.ID]; !ok {
			return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, req.ID)
		}
		d.partRequests[req.ID] = stored
		return nil
	})
}
