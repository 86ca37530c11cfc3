package processors

import (
	"strings"

	"github.com/username/trimestral/src/models"
)

// euCountries maps the ISO 3166-1 alpha-2 codes of EU member states
// (2024-2025 membership) to their Spanish display names.
var euCountries = map[string]string{
	"AT": "Austria",
	"BE": "Bélgica",
	"BG": "Bulgaria",
	"HR": "Croacia",
	"CY": "Chipre",
	"CZ": "República Checa",
	"DK": "Dinamarca",
	"EE": "Estonia",
	"FI": "Finlandia",
	"FR": "Francia",
	"DE": "Alemania",
	"GR": "Grecia",
	"HU": "Hungría",
	"IE": "Irlanda",
	"IT": "Italia",
	"LV": "Letonia",
	"LT": "Lituania",
	"LU": "Luxemburgo",
	"MT": "Malta",
	"NL": "Países Bajos",
	"PL": "Polonia",
	"PT": "Portugal",
	"RO": "Rumanía",
	"SK": "Eslovaquia",
	"SI": "Eslovenia",
	"ES": "España",
	"SE": "Suecia",
}

// ClassifyCountry reports whether a payment's country lies inside the EU
// bloc. It is total: any string is valid input, and an empty code yields
// JurisdictionUnknown. For EU members the Spanish display name is returned.
func ClassifyCountry(code string) (models.Jurisdiction, string) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return models.JurisdictionUnknown, ""
	}
	if name, ok := euCountries[strings.ToUpper(trimmed)]; ok {
		return models.JurisdictionEU, name
	}
	return models.JurisdictionNonEU, ""
}
