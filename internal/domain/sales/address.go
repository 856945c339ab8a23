package sales

// Address is a value stored in the customer's address collection
type Address struct {
	AddressLine1      string
	AddressLine2      string
	City              string
	PostalCode        string
	HighRiseExtension *HighRiseAddressExtension
}

// HighRiseAddressExtension carries the extra routing details of a flat in a
// high-rise building. It has its own generated id.
type HighRiseAddressExtension struct {
	ID         int64
	Suite      string
	Floor      string
	BuzzerCode string
}

// IsHighRise reports whether the address carries a high-rise extension
func (a Address) IsHighRise() bool {
	return a.HighRiseExtension != nil
}
