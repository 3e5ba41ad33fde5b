package domain

// AddressType classifies an address record.
type AddressType string

const (
	AddressHome     AddressType = "HOME"
	AddressBusiness AddressType = "BUSINESS"
	AddressOther    AddressType = "OTHER"
)

// Address is a UK-style postal address. The postcode is the geocoding key
// sent to the distance matrix provider.
type Address struct {
	ID          int
	Type        AddressType
	Line1       string
	Line2       string
	City        string
	County      string
	ZipPostcode string
}

// Batch is a named group of customers routed together.
type Batch struct {
	ID   int
	Name string
}

// Customer is a delivery destination with a demand, belonging to one batch.
type Customer struct {
	ID        int
	Address   Address
	Demand    float64
	BatchID   int
	BatchName string
}
