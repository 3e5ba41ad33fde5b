package dto

type BatchResponse struct {
	ID        int    `json:"id"`
	BatchName string `json:"batch_name"`
}

type ListBatchesResponse struct {
	Batches []BatchResponse `json:"batches"`
}

type AddressResponse struct {
	ID          int    `json:"id"`
	AddressType string `json:"address_type"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	County      string `json:"county"`
	ZipPostcode string `json:"zip_postcode"`
}

type ListAddressesResponse struct {
	Addresses []AddressResponse `json:"addresses"`
}

type CustomerResponse struct {
	ID             int             `json:"id"`
	Address        AddressResponse `json:"address"`
	CustomerDemand float64         `json:"customer_demand"`
	BatchName      string          `json:"batch_name"`
}

type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
}
