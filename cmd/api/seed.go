package main

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/infrastructure/memory"
)

// seedDemo datos maestros mínimos para STORAGE_DRIVER=memory.
func seedDemo(s *memory.Store) {
	const (
		centro = "11111111-1111-1111-1111-111111111111"
		norte  = "22222222-2222-2222-2222-222222222222"
	)
	s.AddBranch(entity.Branch{ID: centro, Code: "CEN", Name: "Sede Centro"})
	s.AddBranch(entity.Branch{ID: norte, Code: "NOR", Name: "Sede Norte"})
	s.AddLocation(entity.Location{ID: "aaaaaaaa-0000-0000-0000-000000000001", BranchID: centro, Name: "Bodega principal"})
	s.AddLocation(entity.Location{ID: "aaaaaaaa-0000-0000-0000-000000000002", BranchID: centro, Name: "Mostrador"})
	s.AddLocation(entity.Location{ID: "bbbbbbbb-0000-0000-0000-000000000001", BranchID: norte, Name: "Bodega"})
	s.AddPart(entity.Part{ID: "cccccccc-0000-0000-0000-000000000001", SKU: "FLT-ACE-01", Name: "Filtro de aceite", UnitMeasure: "UND"})
	s.AddPart(entity.Part{ID: "cccccccc-0000-0000-0000-000000000002", SKU: "ACE-5W30", Name: "Aceite 5W30", UnitMeasure: "L"})
	s.AddPart(entity.Part{ID: "cccccccc-0000-0000-0000-000000000003", SKU: "PAS-DEL-01", Name: "Pastillas de freno delanteras", UnitMeasure: "JGO"})
	s.AddSupplier(entity.Supplier{ID: "dddddddd-0000-0000-0000-000000000001", Name: "Autopartes del Valle"})
	s.AddJob(centro, "eeeeeeee-0000-0000-0000-000000000001")
	s.AddPartRequest(entity.PartRequest{
		ID:       "ffffffff-0000-0000-0000-000000000001",
		BranchID: centro,
		JobID:    "eeeeeeee-0000-0000-0000-000000000001",
		PartID:   "cccccccc-0000-0000-0000-000000000003",
		Qty:      decimal.NewFromInt(1),
		Status:   entity.PartRequestPending,
	})
}
