package client

// Client is an identity record for a borrower. Clients are created at
// registration, updated field by field, and never deleted.
type Client struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	Occupation            string `json:"occupation"`
	Address               string `json:"address"`
	Photo                 string `json:"photo"`
	PassportNumber        string `json:"passport_number"`
	DriverLicenseNumber   string `json:"driver_license_number"`
	OwnerOfVehicleNumber  string `json:"owner_of_vehicle_number"`
	BusinessLicenseNumber string `json:"business_license_number"`
	VehicleNumberPlate    string `json:"vehicle_number_plate"`
}

// UpdateInput carries a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Name                  *string
	Phone                 *string
	Occupation            *string
	Address               *string
	Photo                 *string
	PassportNumber        *string
	DriverLicenseNumber   *string
	OwnerOfVehicleNumber  *string
	BusinessLicenseNumber *string
	VehicleNumberPlate    *string
}

func (u UpdateInput) isEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.Occupation == nil && u.Address == nil &&
		u.Photo == nil && u.PassportNumber == nil && u.DriverLicenseNumber == nil &&
		u.OwnerOfVehicleNumber == nil && u.BusinessLicenseNumber == nil && u.VehicleNumberPlate == nil
}
