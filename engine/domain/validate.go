package domain

import "strings"

// ValidatePosting checks the fields the pipeline cannot work without.
// Postings failing this gate are skipped and counted, never fatal.
func ValidatePosting(p Posting) error {
	if strings.TrimSpace(p.Company) == "" {
		return NewValidationError("company", p.Company, ErrMissingCompany)
	}
	if strings.TrimSpace(p.Description) == "" {
		return NewValidationError("description", "", ErrMissingDescription)
	}
	return nil
}
