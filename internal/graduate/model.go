package graduate

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Graduate is one ceremony record, keyed externally by UniqueID.
// Imported columns are rewritten on re-import; event-control columns are
// mutated by staff during the ceremony.
type Graduate struct {
	ID               string          `json:"id"`
	SubmissionDate   *time.Time      `json:"submission_date,omitempty"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Qualification    *string         `json:"qualification,omitempty"`
	StudentID        string          `json:"student_id"`
	PaymentStatus    string          `json:"payment_status"`
	GownOption       string          `json:"gown_option"`
	AdditionalGuests int             `json:"additional_guests"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	UniqueID         string          `json:"unique_id"`
	GownSize         string          `json:"gown_size"`
	SubmissionID     string          `json:"submission_id"`
	PhotoPath        string          `json:"photo_path,omitempty"`

	Attended          bool       `json:"attended"`
	CheckInTime       *time.Time `json:"check_in_time,omitempty"`
	CheckedInBy       string     `json:"checked_in_by"`
	GownCollected     bool       `json:"gown_collected"`
	GownReturned      bool       `json:"gown_returned"`
	GownNotes         string     `json:"gown_notes"`
	SeatRow           string     `json:"seat_row"`
	SeatNumber        string     `json:"seat_number"`
	PresentationOrder *int       `json:"presentation_order,omitempty"`
	DisplayName       string     `json:"display_name"`
	CourseName        string     `json:"course_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsToReturnGown reports whether the graduate hired (rather than
// purchased) a gown. Hired gowns must come back to the gown desk; the
// imported option text is free-form, e.g. "Hire ($200)".
func (g Graduate) NeedsToReturnGown() bool {
	if g.GownOption == "" {
		return false
	}
	return strings.Contains(strings.ToLower(g.GownOption), "hire")
}

// Counts holds the dashboard aggregates. GownToReturn is the fixed
// denominator of hire-option records, independent of collection state.
type Counts struct {
	Total         int `json:"total"`
	CheckedIn     int `json:"checked_in"`
	GownCollected int `json:"gown_collected"`
	GownReturned  int `json:"gown_returned"`
	GownToReturn  int `json:"gown_to_return"`
}
