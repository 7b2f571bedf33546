package domain

// Person is the single record type the service manages. The wire field names
// are the German column names of the personen table; optional columns are
// pointers so a missing value round-trips as JSON null.
type Person struct {
	ID            int64   `json:"id"`
	Vorname       string  `json:"vorname"`
	Nachname      string  `json:"nachname"`
	PLZ           *int64  `json:"plz"`
	Strasse       *string `json:"strasse"`
	Ort           *string `json:"ort"`
	Telefonnummer *int64  `json:"telefonnummer"`
	Email         string  `json:"email"`
}
