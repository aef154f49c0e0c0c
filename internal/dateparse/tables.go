package dateparse

// Language tables for the locales the upstream providers actually emit:
// English, Spanish and Portuguese. All entries are lowercase and
// diacritic-folded; input strings are folded before lookup.

// monthNumbers maps month names and their common abbreviations to 1-12.
// Abbreviations shared across languages (jan, mar, abr, ago, nov) collapse
// into a single entry.
var monthNumbers = map[string]int{
	// English
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5,
	"june": 6, "july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,

	// Spanish
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5,
	"junio": 6, "julio": 7, "agosto": 8, "septiembre": 9, "setiembre": 9,
	"octubre": 10, "noviembre": 11, "diciembre": 12,
	"ene": 1, "abr": 4, "ago": 8, "set": 9, "dic": 12,

	// Portuguese (folded: março -> marco)
	"janeiro": 1, "fevereiro": 2, "marco": 3, "maio": 5, "junho": 6,
	"julho": 7, "setembro": 9, "outubro": 10, "novembro": 11, "dezembro": 12,
	"fev": 2, "mai": 5, "out": 10, "dez": 12,
}

// weekdayNames are stripped from the head of a date string, where the
// providers place them ("qui., 15 de mai."). They are only stripped in
// leading position because "mar" is both the Spanish weekday abbreviation
// and the March abbreviation.
var weekdayNames = map[string]bool{
	// English
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"mon": true, "tue": true, "tues": true, "wed": true, "thu": true,
	"thur": true, "thurs": true, "fri": true, "sat": true, "sun": true,

	// Spanish (folded)
	"lunes": true, "martes": true, "miercoles": true, "jueves": true,
	"viernes": true, "sabado": true, "domingo": true,
	"lun": true, "mie": true, "jue": true, "vie": true, "sab": true,
	"dom": true,

	// Portuguese (folded)
	"segunda": true, "segunda-feira": true, "terca": true,
	"terca-feira": true, "quarta": true, "quarta-feira": true,
	"quinta": true, "quinta-feira": true, "sexta": true,
	"sexta-feira": true,
	"seg":         true, "ter": true, "qua": true, "qui": true, "sex": true,

	// Spanish weekday abbreviation that collides with March.
	"mar": true,
}

// connectorWords are filler tokens that carry no date information and
// confuse numeric extraction ("15 de mai.", "el 3 de junio a las 20:00").
var connectorWords = map[string]bool{
	"de": true, "del": true, "da": true, "do": true, "dia": true,
	"el": true, "la": true, "las": true, "los": true, "as": true,
	"a": true, "at": true, "on": true, "the": true, "of": true,
	"h": true, "hs": true, "hrs": true,
}
