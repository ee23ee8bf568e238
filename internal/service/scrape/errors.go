package scrape

import (
	"errors"
	"fmt"

	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
)

// restrictedListStatus is the status code the API answers with when a
// paginated list is private.
const restrictedListStatus = 10222

// ErrRestrictedList marks a list the server refuses to enumerate due
// to privacy settings. Callers may downgrade it to a warning and an
// absent list instead of aborting the scrape.
var ErrRestrictedList = errors.New("requested list is private")

// StatusError is any other non-zero API status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned status code %d", e.Code)
}

// checkStatus maps a page response status onto the error taxonomy.
func checkStatus(resp *model.APIResponse) error {
	switch resp.StatusCode {
	case 0:
		return nil
	case restrictedListStatus:
		return fmt.Errorf("%w (status code %d)", ErrRestrictedList, resp.StatusCode)
	default:
		return &StatusError{Code: resp.StatusCode}
	}
}
