package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// canonical display string per country, keyed by lower-cased synonym.
// Every canonical value maps to itself so normalization is idempotent.
var nationalitySynonyms = map[string]string{
	"maroc": "Maroc", "marocain": "Maroc", "marocaine": "Maroc",
	"morocco": "Maroc", "moroccan": "Maroc", "mar": "Maroc",

	"france": "France", "francais": "France", "français": "France",
	"francaise": "France", "française": "France", "french": "France", "fra": "France",

	"algerie": "Algérie", "algérie": "Algérie", "algerien": "Algérie",
	"algérien": "Algérie", "algeria": "Algérie", "algerian": "Algérie", "dza": "Algérie",

	"tunisie": "Tunisie", "tunisien": "Tunisie", "tunisia": "Tunisie",
	"tunisian": "Tunisie", "tun": "Tunisie",

	"espagne": "Espagne", "espagnol": "Espagne", "espagnole": "Espagne",
	"spain": "Espagne", "spanish": "Espagne", "esp": "Espagne",

	"senegal": "Sénégal", "sénégal": "Sénégal", "senegalais": "Sénégal",
	"sénégalais": "Sénégal", "senegalese": "Sénégal", "sen": "Sénégal",

	"belgique": "Belgique", "belge": "Belgique", "belgium": "Belgique",
	"belgian": "Belgique", "bel": "Belgique",

	"italie": "Italie", "italien": "Italie", "italy": "Italie",
	"italian": "Italie", "ita": "Italie",

	"allemagne": "Allemagne", "allemand": "Allemagne", "germany": "Allemagne",
	"german": "Allemagne", "deu": "Allemagne",

	"royaume-uni": "Royaume-Uni", "britannique": "Royaume-Uni",
	"united kingdom": "Royaume-Uni", "british": "Royaume-Uni", "gbr": "Royaume-Uni",
}

var titleCaser = cases.Title(language.French)

// NormalizeNationality maps free-text nationality spellings onto one
// canonical display string per country, case-insensitively. Unmatched
// input is title-cased and passed through unchanged.
func NormalizeNationality(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := nationalitySynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return titleCaser.String(strings.ToLower(trimmed))
}
