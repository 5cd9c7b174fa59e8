package domain

import "github.com/spec-kit/worklog-dictionaries/pkg/util"

// CateringVendor is a catering company reference-data entity. Ids are
// assigned by the server; a vendor with an empty id has never been persisted.
type CateringVendor struct {
	ID    string `json:"id"`
	TaxID string `json:"taxId"`
	Name  string `json:"name"`
}

// Validate checks the decoded vendor shape.
func (v *CateringVendor) Validate() error {
	return validateVendor("catering vendor", v.ID, v.TaxID, v.Name)
}

// CateringVendors validates element-wise.
type CateringVendors []CateringVendor

func (vs CateringVendors) Validate() error {
	for i := range vs {
		if err := vs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AccommodationVendor is an accommodation company reference-data entity.
// Same wire shape as CateringVendor, kept as a distinct named type.
type AccommodationVendor struct {
	ID    string `json:"id"`
	TaxID string `json:"taxId"`
	Name  string `json:"name"`
}

// Validate checks the decoded vendor shape.
func (v *AccommodationVendor) Validate() error {
	return validateVendor("accommodation vendor", v.ID, v.TaxID, v.Name)
}

// AccommodationVendors validates element-wise.
type AccommodationVendors []AccommodationVendor

func (vs AccommodationVendors) Validate() error {
	for i := range vs {
		if err := vs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// VendorPayload is the request body for vendor create/update calls.
type VendorPayload struct {
	TaxID string `json:"taxId"`
	Name  string `json:"name"`
}

func validateVendor(kind, id, taxID, name string) error {
	if id == "" {
		return util.NewDecodeError(kind+" missing id", nil)
	}
	if taxID == "" {
		return util.NewDecodeError(kind+" missing taxId", nil)
	}
	if name == "" {
		return util.NewDecodeError(kind+" missing name", nil)
	}
	return nil
}
