package depreciation

// Method is the ATO depreciation method applied to an asset
type Method string

const (
	MethodDiminishingValue Method = "diminishing_value"
	MethodPrimeCost        Method = "prime_cost"
)

// IsValid checks if the method is a valid Method
func (m Method) IsValid() bool {
	return m == MethodDiminishingValue || m == MethodPrimeCost
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// Category separates Division 40 plant & equipment from Division 43 capital works
type Category string

const (
	CategoryPlantEquipment Category = "plant_equipment"
	CategoryCapitalWorks   Category = "capital_works"
)

// IsValid checks if the category is a valid Category
func (c Category) IsValid() bool {
	return c == CategoryPlantEquipment || c == CategoryCapitalWorks
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// IsCapitalWorks returns true for Division 43 items
func (c Category) IsCapitalWorks() bool {
	return c == CategoryCapitalWorks
}

// PoolType is the ATO treatment bucket an asset falls into
type PoolType string

const (
	PoolIndividual        PoolType = "individual"
	PoolLowValue          PoolType = "low_value"
	PoolImmediateWriteOff PoolType = "immediate_writeoff"
)

// IsValid checks if the pool type is a valid PoolType
func (p PoolType) IsValid() bool {
	switch p {
	case PoolIndividual, PoolLowValue, PoolImmediateWriteOff:
		return true
	}
	return false
}

// String returns the string representation of PoolType
func (p PoolType) String() string {
	return string(p)
}
