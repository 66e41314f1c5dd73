// Package extract turns raw OCR text into structured identity fields.
// Every extractor is a pure function over text: it returns the zero value
// when nothing is found and never guesses values not textually present.
package extract

// Fields is the loosely-typed bag an OCR pass produces. Each field is
// independently optional.
type Fields struct {
	Nom            string `json:"nom,omitempty"`
	Prenom         string `json:"prenom,omitempty"`
	Nationalite    string `json:"nationalite,omitempty"`
	NumeroDocument string `json:"numero_document,omitempty"`
	DateNaissance  string `json:"date_naissance,omitempty"`
	DateExpiration string `json:"date_expiration,omitempty"`
	Telephone      string `json:"telephone,omitempty"`
	CodeBarre      string `json:"code_barre,omitempty"`
}

// All runs every extractor over the raw text. The barcode extractor
// receives the phone result so the same digit run is never reported twice.
func All(text string) Fields {
	phone := Phone(text)
	mrz := MRZ(text)

	f := Fields{
		Nom:            mrz.Surname,
		Prenom:         mrz.GivenNames,
		NumeroDocument: mrz.DocumentNumber,
		DateNaissance:  mrz.BirthDate,
		DateExpiration: mrz.ExpiryDate,
		Telephone:      phone,
		CodeBarre:      Barcode(text, phone),
	}
	if mrz.Nationality != "" {
		f.Nationalite = NormalizeNationality(mrz.Nationality)
	}
	return f
}
