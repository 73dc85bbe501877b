package domain

import "time"

// DateLayout is how last-updated dates are stored and shown.
const DateLayout = "2006-01-02"

type Lodging struct {
	ID            string
	Name          string
	Address       string
	Phone         string
	Capacity      int
	Vacancies     int
	PricePerNight int // yen
	Description   string
	Facilities    []string
	ImageURL      string
	Coords        *Coords
	Published     bool
	LastUpdated   time.Time // date only, UTC
}

type Coords struct{ Lat, Lon float64 }

// Available reports whether at least one room is free.
func (l Lodging) Available() bool { return l.Vacancies > 0 }

// LastUpdatedLabel renders the date, or "" when the row was never touched.
func (l Lodging) LastUpdatedLabel() string {
	if l.LastUpdated.IsZero() {
		return ""
	}
	return l.LastUpdated.Format(DateLayout)
}

// LodgingDetails is the editable field set of the full editor.
// Name, phone, address and capacity are deliberately absent.
type LodgingDetails struct {
	Vacancies     int
	PricePerNight int
	Description   string
	Facilities    []string
	ImageURL      string
	LastUpdated   time.Time
}

// OwnerAssignment grants OwnerID edit rights over LodgingID.
type OwnerAssignment struct {
	OwnerID   string
	LodgingID string
}

// Today truncates t to a UTC calendar date.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
