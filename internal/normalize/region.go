package normalize

import "strings"

// regionAliases collapses the written forms of a city seen on gomafia
// profiles to one canonical spelling. Lookup is case-sensitive: Cyrillic
// names appear on the site in a fixed casing, and an all-caps variant of
// a known city is treated as unknown and left unmodified.
var regionAliases = map[string]string{
	"МСК":              "Москва",
	"Мск":              "Москва",
	"Moscow":           "Москва",
	"москва":           "Москва",
	"г. Москва":        "Москва",
	"СПБ":              "Санкт-Петербург",
	"СПб":              "Санкт-Петербург",
	"Спб":              "Санкт-Петербург",
	"Питер":            "Санкт-Петербург",
	"Петербург":        "Санкт-Петербург",
	"Saint Petersburg": "Санкт-Петербург",
	"St. Petersburg":   "Санкт-Петербург",
	"г. Санкт-Петербург": "Санкт-Петербург",
	"ЕКБ":              "Екатеринбург",
	"Екб":              "Екатеринбург",
	"Yekaterinburg":    "Екатеринбург",
	"НН":               "Нижний Новгород",
	"Nizhny Novgorod":  "Нижний Новгород",
	"Новосиб":          "Новосибирск",
	"Novosibirsk":      "Новосибирск",
	"Kazan":            "Казань",
	"Ростов":           "Ростов-на-Дону",
	"Rostov-on-Don":    "Ростов-на-Дону",
	"Минск":            "Минск",
	"Minsk":            "Минск",
	"Киев":             "Киев",
	"Kyiv":             "Киев",
	"Kiev":             "Киев",
}

// Region canonicalizes a region or city name through the alias table.
// Unknown values pass through unchanged; blank or whitespace-only input
// returns the empty string. Deterministic and pure.
func Region(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := regionAliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}
