package memory

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.MasterDataRepository = (*MasterDataRepo)(nil)

// MasterDataRepo consultas de datos maestros.
type MasterDataRepo struct {
	v view
}

func (r *MasterDataRepo) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	r.v.read(func(d *data) {
		if b, ok := d.branches[id]; ok {
			out = shallow(b)
		}
	})
	return out, nil
}

func (r *MasterDataRepo) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	r.v.read(func(d *data) {
		if l, ok := d.locations[id]; ok {
			out = shallow(l)
		}
	})
	return out, nil
}

func (r *MasterDataRepo) GetPart(ctx context.Context, id string) (*entity.Part, error) {
	var out *entity.Part
	r.v.read(func(d *data) {
		if p, ok := d.parts[id]; ok {
			out = shallow(p)
		}
	})
	return out, nil
}

func (r *MasterDataRepo) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.v.read(func(d *data) {
		if s, ok := d.suppliers[id]; ok {
			out = shallow(s)
		}
	})
	return out, nil
}

func (r *MasterDataRepo) JobExists(ctx context.Context, branchID, jobID string) (bool, error) {
	var ok bool
	r.v.read(func(d *data) {
		b, found := d.jobs[jobID]
		ok = found && b == branchID
	})
	return ok, nil
}

// Los datos maestros pertenecen a otros módulos; estas funciones los cargan en desarrollo y pruebas.

func (s *Store) seed(fn func(d *data)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.current)
}

// AddBranch registra una sucursal.
func (s *Store) AddBranch(b entity.Branch) {
	s.seed(func(d *data) { d.branches[b.ID] = &b })
}

// AddLocation registra una ubicación dentro de su sucursal.
func (s *Store) AddLocation(l entity.Location) {
	s.seed(func(d *data) { d.locations[l.ID] = &l })
}

// AddPart registra un repuesto del catálogo.
func (s *Store) AddPart(p entity.Part) {
	s.seed(func(d *data) { d.parts[p.ID] = &p })
}

// AddSupplier registra un proveedor.
func (s *Store) AddSupplier(sp entity.Supplier) {
	s.seed(func(d *data) { d.suppliers[sp.ID] = &sp })
}

// AddJob registra una orden de trabajo abierta en la sucursal.
func (s *Store) AddJob(branchID, jobID string) {
	s.seed(func(d *data) { d.jobs[jobID] = branchID })
}

// AddPartRequest registra una solicitud de repuesto pendiente.
func (s *Store) AddPartRequest(req entity.PartRequest) {
	s.seed(func(d *data) { d.partRequests[req.ID] = &req })
}
