package expense

type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Entertainment Category = "entertainment"
	Health        Category = "health"
	Utilities     Category = "utilities"
	Housing       Category = "housing"
	Education     Category = "education"
	Shopping      Category = "shopping"
	Other         Category = "other"
)

var Categories = []Category{Food, Transport, Entertainment, Health, Utilities, Housing, Education, Shopping, Other}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}
