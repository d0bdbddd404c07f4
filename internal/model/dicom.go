package model

import (
	"strings"

	"github.com/mfigueroa/spotter/utils"
)

// DICOM marker phrases found in showcase descriptions, cleaned form.
// The legacy source never exposes a boolean DICOM field; the flag must be
// inferred from these markers, evaluated in priority order.
var (
	dicomBothTrue      = "AMBOS CON DICOM"
	dicomBothFalse     = "AMBOS SIN DICOM"
	dicomDebtorTrue    = "PAGADOR CON DICOM"
	dicomBorrowerTrue  = []string{"SOLICITANTE CON DICOM", "CLIENTE CON DICOM"}
	dicomBorrowerFalse = "SOLICITANTE SIN DICOM"
	dicomSingleFalse   = []string{"SIN DICOM", "NO PRESENTA DICOM", "NO REGISTRA DICOM"}
	dicomSingleTrue    = []string{"CON DICOM", "CONDICOM", "PRESENTA DICOM"}
)

// InferDicom derives the borrower and debtor DICOM flags from the raw
// showcase descriptions. Rules run in priority order; the first match for a
// party wins. No match leaves the flag nil: unknown, not false.
func InferDicom(borrowerDescription, debtorDescription string) (borrower, debtor *bool) {
	description := utils.CleanText(borrowerDescription) + " " + utils.CleanText(debtorDescription)

	if strings.Contains(description, dicomBothTrue) {
		return boolPtr(true), boolPtr(true)
	}
	if strings.Contains(description, dicomBothFalse) {
		return boolPtr(false), boolPtr(false)
	}

	if strings.Contains(description, dicomDebtorTrue) {
		debtor = boolPtr(true)
	}

	if containsAny(description, dicomBorrowerTrue) {
		borrower = boolPtr(true)
	}
	if strings.Contains(description, dicomBorrowerFalse) {
		borrower = boolPtr(false)
	}

	if borrower == nil && containsAny(description, dicomSingleFalse) {
		borrower = boolPtr(false)
	} else if borrower == nil && containsAny(description, dicomSingleTrue) {
		borrower = boolPtr(true)
	}

	return borrower, debtor
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func boolPtr(v bool) *bool { return &v }
