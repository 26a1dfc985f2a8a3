package catalog

import (
	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

// Services bundles the entity service of every reference collection.
type Services struct {
	Countries   *entity.Service[Country]
	Sellers     *entity.Service[Seller]
	Customers   *entity.Service[Customer]
	Farms       *entity.Service[Farm]
	Carriers    *entity.Service[Carrier]
	Consignees  *entity.Service[Consignee]
	DAEs        *entity.Service[DAE]
	Marks       *entity.Service[Mark]
	Provinces   *entity.Service[Province]
	Products    *entity.Service[Product]
	CreditNotes *entity.Service[CreditNote]
	DebitNotes  *entity.Service[DebitNote]
}

func NewServices(repo entity.Repository) *Services {
	return &Services{
		Countries:   entity.NewService[Country](repo, storage.Countries),
		Sellers:     entity.NewService[Seller](repo, storage.Sellers),
		Customers:   entity.NewService[Customer](repo, storage.Customers),
		Farms:       entity.NewService[Farm](repo, storage.Farms),
		Carriers:    entity.NewService[Carrier](repo, storage.Carriers),
		Consignees:  entity.NewService[Consignee](repo, storage.Consignees),
		DAEs:        entity.NewService[DAE](repo, storage.DAEs),
		Marks:       entity.NewService[Mark](repo, storage.Marks),
		Provinces:   entity.NewService[Province](repo, storage.Provinces),
		Products:    entity.NewService[Product](repo, storage.Products),
		CreditNotes: entity.NewService[CreditNote](repo, storage.CreditNotes),
		DebitNotes:  entity.NewService[DebitNote](repo, storage.DebitNotes),
	}
}

// Editors returns every reference collection service in layout order.
func (s *Services) Editors() []entity.Editor {
	return []entity.Editor{
		s.Countries, s.Sellers, s.Customers, s.Farms, s.Carriers, s.Consignees,
		s.DAEs, s.Marks, s.Provinces, s.Products, s.CreditNotes, s.DebitNotes,
	}
}

// Editor returns the service of collection c.
func (s *Services) Editor(c storage.Collection) (entity.Editor, bool) {
	for _, e := range s.Editors() {
		if e.Collection() == c {
			return e, true
		}
	}

	return nil, false
}

func (s *Services) Listers() []entity.Lister {
	editors := s.Editors()

	listers := make([]entity.Lister, len(editors))
	for i, e := range editors {
		listers[i] = e
	}

	return listers
}
