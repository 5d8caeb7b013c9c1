// internal/viewmodel/po_form.go
package viewmodel

import (
	"strconv"
	"time"

	"github.com/ajmalkv/rollsops/internal/domain"
)

// POForm models the "add purchase order" dialog state. Values are kept as the
// strings the user typed; Build converts them once validation passes.
type POForm struct {
	PONumber      string
	District      string
	NumberOfRolls string
	ReceivedDate  string

	districts domain.DistrictList
}

// NewPOForm builds a form over the shared district lookup. The received date
// defaults to today.
func NewPOForm(districts domain.DistrictList) *POForm {
	return &POForm{
		ReceivedDate: time.Now().Format(dateLayout),
		districts:    districts,
	}
}

// Validate runs the client-side checks. Validation errors never reach the
// network layer.
func (f *POForm) Validate() map[string]string {
	errs := make(map[string]string)

	switch {
	case f.PONumber == "":
		errs["purchaseOrderNumber"] = "Purchase Order Number is required"
	case len(f.PONumber) < 3:
		errs["purchaseOrderNumber"] = "PO Number must be at least 3 characters"
	}

	if f.District == "" {
		errs["district"] = "District is required"
	} else if _, ok := f.districts.IDByName(f.District); !ok {
		errs["district"] = "District is not recognized"
	}

	if f.NumberOfRolls == "" {
		errs["numberOfRolls"] = "Number of Rolls is required"
	} else if n, err := strconv.Atoi(f.NumberOfRolls); err != nil || n <= 0 {
		errs["numberOfRolls"] = "Number of rolls must be a positive number"
	}

	if f.ReceivedDate == "" {
		errs["receivedDate"] = "Received Date is required"
	} else if _, err := time.Parse(dateLayout, f.ReceivedDate); err != nil {
		errs["receivedDate"] = "Received Date must be a valid date"
	}

	return errs
}

// Build converts a validated form into the create payload. The district name
// resolves to its id through the shared lookup.
func (f *POForm) Build() (domain.CreatePurchaseOrderInput, error) {
	if errs := f.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			return domain.CreatePurchaseOrderInput{}, validationError(msg)
		}
	}

	districtID, _ := f.districts.IDByName(f.District)
	count, _ := strconv.Atoi(f.NumberOfRolls)

	return domain.CreatePurchaseOrderInput{
		PONo:           f.PONumber,
		DistrictID:     districtID,
		PurchasedCount: count,
		ReceivedDate:   f.ReceivedDate,
	}, nil
}

type validationError string

func (e validationError) Error() string { return string(e) }

// IsValidationError reports whether err came from client-side form checks.
func IsValidationError(err error) bool {
	_, ok := err.(validationError)
	return ok
}
