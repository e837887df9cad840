package normalize

// DefaultAliases is the curated table of known vendor spelling variants,
// keyed by normalized form (diacritics, separators and case already
// removed). Append-only: new variants observed in billing reports get an
// entry here and nowhere else.
func DefaultAliases() map[string]string {
	return map[string]string{
		// HITSS
		"hitss":       "hitss",
		"hitts":       "hitss",
		"globalhitss": "hitss",

		// NTT DATA
		"nttdata": "nttdata",
		"ntt":     "nttdata",

		// MJV
		"mjv":                         "mjv",
		"mjvtechnologyinnovation":     "mjv",
		"mjvsolucoemtecnologialtda":   "mjv",
		"mjvtecnologiaeinovacao":      "mjv",
		"mjvsolucoemtecnologia":       "mjv",
		"mjvsolucoesemtecnologialtda": "mjv",
		"mjvsolucoesemtecnologia":     "mjv",

		// ATOS (includes names polluted with purchase-order remnants)
		"atos": "atos",
		"atosajustedarc1008549873pedidoemitido5500508154": "atos",
		"atosajustedarc100854987pedidoemitido5500508154":  "atos",

		// M4
		"m4":                          "m4",
		"m4po5500509779emitidaem1106": "m4",

		// ENGINEERING (frequent typos)
		"engineering":         "engineering",
		"engeering":           "engineering",
		"enginnering":         "engineering",
		"engineeringbrasil":   "engineering",
		"engineeringdobrasil": "engineering",
		"engineeringdo":       "engineering",
		"engeeringbrasil":     "engineering",
		"engeeringdobrasil":   "engineering",

		// SITE BLINDADO
		"siteblindado":     "siteblindado",
		"siteblindadoltda": "siteblindado",
	}
}
