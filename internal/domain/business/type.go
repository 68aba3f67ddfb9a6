package business

// ===============================
// Business Type
// ===============================

type Type string

const (
	TypeRestaurant    Type = "restaurant"
	TypeLawyerOffice  Type = "lawyer_office"
	TypeDentalClinic  Type = "dental_clinic"
	TypeHairSalon     Type = "hair_salon"
	TypeRetailStore   Type = "retail_store"
	TypeMedicalClinic Type = "medical_clinic"
	TypeFitnessCenter Type = "fitness_center"
	TypeSpa           Type = "spa"
	TypeAutoRepair    Type = "auto_repair"
	TypeRealEstate    Type = "real_estate"
	TypeOther         Type = "other"
)

// DefaultType is used when a business is created without a type.
const DefaultType = TypeOther

var Types = []Type{
	TypeRestaurant,
	TypeLawyerOffice,
	TypeDentalClinic,
	TypeHairSalon,
	TypeRetailStore,
	TypeMedicalClinic,
	TypeFitnessCenter,
	TypeSpa,
	TypeAutoRepair,
	TypeRealEstate,
	TypeOther,
}

func IsValidType(s string) bool {
	for _, t := range Types {
		if string(t) == s {
			return true
		}
	}
	return false
}
