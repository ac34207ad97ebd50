package category

// Canonical category names. The store does not enforce this set.
const (
	NameWFO     = "WFO"
	NameWFH     = "WFH"
	NameAbsence = "Absence"
)

// CanonicalNames lists the seeded categories in display order.
var CanonicalNames = []string{NameWFO, NameWFH, NameAbsence}

type Category struct {
	ID   int64
	Name string
}

func (c Category) ToResponse() CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}
