package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/events"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

func price(v float64) *float64 { return &v }

var (
	weekdays  = []string{"lunes", "martes", "miércoles", "jueves", "viernes"}
	monWedFri = []string{"lunes", "miércoles", "viernes"}
	tueThuSat = []string{"martes", "jueves", "sábado"}
	tueWedThu = []string{"martes", "miércoles", "jueves"}
)

// DefaultTreatments is the reference treatment catalog inserted by seeding.
func DefaultTreatments() []domain.Treatment {
	return []domain.Treatment{
		{Name: "Limpieza dental", DurationLabel: "30 min", PriceAmount: price(50), Description: "Limpieza profunda y eliminación de placa bacteriana", Category: "preventiva"},
		{Name: "Tratamiento de caries", DurationLabel: "45 min", PriceAmount: price(80), Description: "Eliminación de caries y restauración dental", Category: "restaurativa"},
		{Name: "Consulta ortodoncia", DurationLabel: "60 min", PriceAmount: price(100), Description: "Evaluación y plan de tratamiento ortodóntico", Category: "ortodoncia"},
		{Name: "Extracción dental", DurationLabel: "45 min", PriceAmount: price(70), Description: "Extracción de pieza dental dañada", Category: "cirugía"},
		{Name: "Endodoncia", DurationLabel: "90 min", PriceAmount: price(150), Description: "Tratamiento de conducto radicular", Category: "endodoncia"},
		{Name: "Blanqueamiento dental", DurationLabel: "60 min", PriceAmount: price(120), Description: "Tratamiento estético para blanquear dientes", Category: "estética"},
		{Name: "Implante dental", DurationLabel: "120 min", PriceAmount: price(800), Description: "Colocación de implante dental", Category: "implantología"},
		{Name: "Coronas de porcelana", DurationLabel: "90 min", PriceAmount: price(400), Description: "Colocación de corona de porcelana", Category: "restaurativa"},
	}
}

// DefaultDentists is the reference dentist catalog inserted by seeding.
func DefaultDentists() []domain.Dentist {
	dentist := func(name, specialty string, schedule []string, experience string) domain.Dentist {
		return domain.Dentist{
			Name:            name,
			Specialty:       specialty,
			Available:       true,
			Schedule:        append([]string(nil), schedule...),
			ExperienceLabel: experience,
		}
	}
	return []domain.Dentist{
		dentist("Dr. Juan Carlos", "Odontología general", weekdays, "10 años"),
		dentist("Dra. María González", "Odontología estética", monWedFri, "8 años"),
		dentist("Dr. Carlos Mendoza", "Cirugía oral", tueThuSat, "12 años"),
		dentist("Dra. Ana Ruiz", "Ortodoncia", weekdays, "6 años"),
		dentist("Dr. Luis Herrera", "Endodoncia", tueWedThu, "15 años"),
	}
}

// Seeder bulk-inserts the reference catalog. Running it twice duplicates every record.
type Seeder struct {
	catalog    repository.CatalogRepository
	dispatcher events.Dispatcher
}

// NewSeeder builds a seeder. dispatcher may be nil.
func NewSeeder(catalog repository.CatalogRepository, dispatcher events.Dispatcher) *Seeder {
	return &Seeder{catalog: catalog, dispatcher: dispatcher}
}

// SeedResult counts inserted records.
type SeedResult struct {
	Treatments int `json:"treatments"`
	Dentists   int `json:"dentists"`
}

// Seed inserts both reference lists.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	return s.seed(ctx, true, true)
}

func (s *Seeder) seed(ctx context.Context, treatments, dentists bool) (SeedResult, error) {
	var res SeedResult
	if treatments {
		list := DefaultTreatments()
		if err := s.catalog.InsertTreatments(ctx, list); err != nil {
			return res, fmt.Errorf("seed treatments: %w", err)
		}
		res.Treatments = len(list)
	}
	if dentists {
		list := DefaultDentists()
		if err := s.catalog.InsertDentists(ctx, list); err != nil {
			return res, fmt.Errorf("seed dentists: %w", err)
		}
		res.Dentists = len(list)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventCatalogSeeded, "catalog", "",
			events.CatalogSeededPayload{Treatments: res.Treatments, Dentists: res.Dentists}))
	}
	return res, nil
}
