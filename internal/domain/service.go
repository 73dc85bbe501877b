package domain

// ServiceCategory is one of a fixed small set.
type ServiceCategory string

const (
	CategoryWelfare    ServiceCategory = "welfare"
	CategoryMedical    ServiceCategory = "medical"
	CategoryEmployment ServiceCategory = "employment"
	CategoryOther      ServiceCategory = "other"
)

var ServiceCategories = []ServiceCategory{CategoryWelfare, CategoryMedical, CategoryEmployment, CategoryOther}

// ParseServiceCategory maps unknown values to CategoryOther.
func ParseServiceCategory(s string) ServiceCategory {
	switch c := ServiceCategory(s); c {
	case CategoryWelfare, CategoryMedical, CategoryEmployment:
		return c
	}
	return CategoryOther
}

// Service is read-only reference data shown on the map page.
type Service struct {
	ID          string
	Name        string
	Category    ServiceCategory
	Address     string
	Phone       string
	Description string
	Coords      *Coords
}
