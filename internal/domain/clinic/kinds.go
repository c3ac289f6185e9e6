// Package clinic registra los tipos de entidad de la clínica veterinaria.
// Cada pantalla de la consola es una instancia genérica parametrizada por
// uno de estos schemas; acá no hay lógica, solo datos.
package clinic

import (
	"strings"

	"vet-console/internal/domain/entity"
)

const (
	KindCustomer      entity.Kind = "customers"
	KindAnimal        entity.Kind = "animals"
	KindDoctor        entity.Kind = "doctors"
	KindAvailableDate entity.Kind = "available-dates"
	KindAppointment   entity.Kind = "appointments"
	KindVaccination   entity.Kind = "vaccinations"
	KindReport        entity.Kind = "reports"
)

const apiPrefix = "/api/v1/"

// Search variants (nombres estables usados por la consola y la CLI).
const (
	SearchCustomerByName           = "by-name"
	SearchAnimalByName             = "by-name"
	SearchAnimalByCustomer         = "by-customer"
	SearchAppointmentByDoctorRange = "by-doctor-range"
	SearchAppointmentByAnimalRange = "by-animal-range"
	SearchVaccinationByAnimal      = "by-animal"
	SearchVaccinationByDateRange   = "by-range"
)

// NewRegistry arma el registry con los siete tipos de la clínica.
func NewRegistry() (*entity.Registry, error) {
	return entity.NewBuilder().
		Register(Customer()).
		Register(Animal()).
		Register(Doctor()).
		Register(AvailableDate()).
		Register(Appointment()).
		Register(Vaccination()).
		Register(Report()).
		Build()
}

// contactFields son los campos compartidos por customer y doctor.
func contactFields() []entity.Field {
	return []entity.Field{
		{Key: "name", Label: "Name", Type: entity.FieldText},
		{Key: "phone", Label: "Phone", Type: entity.FieldText},
		{Key: "email", Label: "Email", Type: entity.FieldText},
		{Key: "address", Label: "Address", Type: entity.FieldText},
		{Key: "city", Label: "City", Type: entity.FieldText},
	}
}

func Customer() entity.Schema {
	return entity.Schema{
		Kind:   KindCustomer,
		Name:   "customer",
		Plural: "customers",
		Path:   apiPrefix + string(KindCustomer),
		Fields: contactFields(),
		Searches: []entity.SearchVariant{
			{Name: SearchCustomerByName, Path: "/searchByName", Shape: entity.ShapeByName, Params: []string{"name"}},
		},
	}
}

func Animal() entity.Schema {
	return entity.Schema{
		Kind:   KindAnimal,
		Name:   "animal",
		Plural: "animals",
		Path:   apiPrefix + string(KindAnimal),
		Fields: []entity.Field{
			{Key: "name", Label: "Name", Type: entity.FieldText},
			{Key: "species", Label: "Species", Type: entity.FieldText},
			{Key: "breed", Label: "Breed", Type: entity.FieldText},
			{Key: "gender", Label: "Gender", Type: entity.FieldText},
			{Key: "dateOfBirth", Label: "Date of Birth", Type: entity.FieldDateTime},
			{Key: "colour", Label: "Colour", Type: entity.FieldText},
		},
		Refs: []entity.Ref{
			{Key: "customer", Label: "Customer", Kind: KindCustomer, Wire: entity.WireNested},
		},
		Searches: []entity.SearchVariant{
			{Name: SearchAnimalByCustomer, Path: "/searchByCustomer", Shape: entity.ShapeByName, Params: []string{"customerName"}},
			{Name: SearchAnimalByName, Path: "/searchByName", Shape: entity.ShapeByName, Params: []string{"name"}},
		},
		Label: func(r entity.Record) string {
			return withSuffix(r.String("name"), r.String("species"))
		},
	}
}

func Doctor() entity.Schema {
	return entity.Schema{
		Kind:   KindDoctor,
		Name:   "doctor",
		Plural: "doctors",
		Path:   apiPrefix + string(KindDoctor),
		Fields: contactFields(),
	}
}

func AvailableDate() entity.Schema {
	return entity.Schema{
		Kind:   KindAvailableDate,
		Name:   "available date",
		Plural: "available dates",
		Path:   apiPrefix + string(KindAvailableDate),
		Fields: []entity.Field{
			{Key: "workDay", Label: "Work Day", Type: entity.FieldDate},
		},
		Refs: []entity.Ref{
			{Key: "doctorId", Label: "Doctor", Kind: KindDoctor, Wire: entity.WireFlat},
		},
		Label: func(r entity.Record) string { return r.String("workDay") },
	}
}

func Appointment() entity.Schema {
	return entity.Schema{
		Kind:   KindAppointment,
		Name:   "appointment",
		Plural: "appointments",
		Path:   apiPrefix + string(KindAppointment),
		Fields: []entity.Field{
			{Key: "appointmentDate", Label: "Appointment Date", Type: entity.FieldDateTime},
		},
		Refs: []entity.Ref{
			{Key: "doctor", Label: "Doctor", Kind: KindDoctor, Wire: entity.WireNested},
			{Key: "animal", Label: "Animal", Kind: KindAnimal, Wire: entity.WireNested},
		},
		Searches: []entity.SearchVariant{
			{Name: SearchAppointmentByDoctorRange, Path: "/searchByDoctorAndDateRange", Shape: entity.ShapeByRelatedRange, Params: []string{"id", "startDate", "endDate"}},
			{Name: SearchAppointmentByAnimalRange, Path: "/searchByAnimalAndDateRange", Shape: entity.ShapeByRelatedRange, Params: []string{"id", "startDate", "endDate"}},
		},
		// El backend embebe doctor y animal en cada appointment: el label propio
		// confía en ese payload y no pasa por el resolver (a diferencia de las
		// cadenas de report, que sí resuelven contra el cache).
		Label: func(r entity.Record) string {
			return strings.Join([]string{
				r.String("appointmentDate"),
				orDefault(r.String("doctor.name"), "Unknown Doctor"),
				orDefault(r.String("animal.name"), "Unknown Animal"),
			}, " - ")
		},
	}
}

func Vaccination() entity.Schema {
	return entity.Schema{
		Kind:   KindVaccination,
		Name:   "vaccination",
		Plural: "vaccinations",
		Path:   apiPrefix + string(KindVaccination),
		Fields: []entity.Field{
			{Key: "name", Label: "Name", Type: entity.FieldText},
			{Key: "code", Label: "Code", Type: entity.FieldText},
			{Key: "protectionStartDate", Label: "Protection Start", Type: entity.FieldDate},
			{Key: "protectionFinishDate", Label: "Protection Finish", Type: entity.FieldDate},
		},
		Refs: []entity.Ref{
			{Key: "animalWithoutCustomer", Label: "Animal", Kind: KindAnimal, Wire: entity.WireNested, Optional: true},
		},
		Searches: []entity.SearchVariant{
			{Name: SearchVaccinationByAnimal, Path: "/searchByAnimal", Shape: entity.ShapeByRelated, Params: []string{"id"}},
			{Name: SearchVaccinationByDateRange, Path: "/searchByVaccinationRange", Shape: entity.ShapeByRange, Params: []string{"startDate", "endDate"}},
		},
		Label: func(r entity.Record) string {
			return withSuffix(r.String("name"), r.String("code"))
		},
	}
}

func Report() entity.Schema {
	return entity.Schema{
		Kind:   KindReport,
		Name:   "report",
		Plural: "reports",
		Path:   apiPrefix + string(KindReport),
		Fields: []entity.Field{
			{Key: "title", Label: "Title", Type: entity.FieldText},
			{Key: "diagnosis", Label: "Diagnosis", Type: entity.FieldText},
			{Key: "price", Label: "Price", Type: entity.FieldNumber, NonNegative: true},
		},
		Refs: []entity.Ref{
			{Key: "appointmentId", Label: "Appointment", Kind: KindAppointment, Wire: entity.WireFlat},
		},
		Derived: []entity.Derived{
			{Key: "doctor", Label: "Doctor", Via: []string{"appointmentId", "doctor"}},
			{Key: "animal", Label: "Animal", Via: []string{"appointmentId", "animal"}},
		},
		Label: func(r entity.Record) string { return r.String("title") },
	}
}

// withSuffix arma "name (extra)" u omite el paréntesis si extra está vacío.
func withSuffix(name, extra string) string {
	name = strings.TrimSpace(name)
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return name
	}
	return name + " (" + extra + ")"
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
