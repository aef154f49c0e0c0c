package classify

import "regexp"

// StyleRule binds a canonical style tag to its keyword pattern. Rules are
// held in an ordered slice with the most specific patterns first so a
// generic pattern never shadows a specific one ("west coast swing" must win
// before a bare "swing" could).
type StyleRule struct {
	Style     string
	Pattern   *regexp.Regexp
	Ambiguous bool // bare keyword is also a common word or overlaps genres
}

// styleRules is the canonical style table. Ambiguous styles need provider
// confirmation or an activity word on top of the keyword hit.
var styleRules = []StyleRule{
	{Style: "West Coast Swing", Pattern: regexp.MustCompile(`(?i)\bwest\s+coast\s+swing\b|\bwcs\b`)},
	{Style: "East Coast Swing", Pattern: regexp.MustCompile(`(?i)\beast\s+coast\s+swing\b|\becs\b`)},
	{Style: "Lindy Hop", Pattern: regexp.MustCompile(`(?i)\blindy\s+hop\b`)},
	{Style: "Cha Cha", Pattern: regexp.MustCompile(`(?i)\bcha\s*cha(?:\s*cha)?\b`)},
	{Style: "Hip-Hop", Pattern: regexp.MustCompile(`(?i)\bhip[\s-]?hop\b`), Ambiguous: true},
	{Style: "Afrobeat", Pattern: regexp.MustCompile(`(?i)\bafro[\s-]?beats?\b`), Ambiguous: true},
	{Style: "Breaking", Pattern: regexp.MustCompile(`(?i)\bbreak\s?danc|\bb-boy\b|\bb-girl\b|\bbreaking\b`), Ambiguous: true},
	{Style: "Salsa", Pattern: regexp.MustCompile(`(?i)\bsalsa\b`)},
	{Style: "Bachata", Pattern: regexp.MustCompile(`(?i)\bbachata\b`)},
	{Style: "Kizomba", Pattern: regexp.MustCompile(`(?i)\bkiz(?:omba)?\b`)},
	{Style: "Zouk", Pattern: regexp.MustCompile(`(?i)\bzouk\b`)},
	{Style: "Forró", Pattern: regexp.MustCompile(`(?i)\bforr[oó]\b`)},
	{Style: "Samba", Pattern: regexp.MustCompile(`(?i)\bsamba\b`), Ambiguous: true},
	{Style: "Pagode", Pattern: regexp.MustCompile(`(?i)\bpagode\b`)},
	{Style: "Lambada", Pattern: regexp.MustCompile(`(?i)\blambada\b`)},
	{Style: "Semba", Pattern: regexp.MustCompile(`(?i)\bsemba\b`)},
	{Style: "Cumbia", Pattern: regexp.MustCompile(`(?i)\bcumbia\b`)},
	{Style: "Tango", Pattern: regexp.MustCompile(`(?i)\btango\b`)},
	{Style: "Ballroom", Pattern: regexp.MustCompile(`(?i)\bballroom\b`)},
	{Style: "Balboa", Pattern: regexp.MustCompile(`(?i)\bbalboa\b`), Ambiguous: true},
	{Style: "House", Pattern: regexp.MustCompile(`(?i)\bhouse\b`), Ambiguous: true},
	{Style: "Hustle", Pattern: regexp.MustCompile(`(?i)\bhustle\b`), Ambiguous: true},
}

// strongActivityRe marks high-confidence participatory signals. A match here
// always rescues a record from noise suppression.
var strongActivityRe = regexp.MustCompile(`(?i)\b(` +
	`workshop|dance\s+class(?:es)?|lesson|aula|curso|` +
	`dance\s+social|social\s+dance|social\s+dance\s+night|baile\s+social|` +
	`milonga|practica|praktika|pratica|` +
	`(?:dance|disco)\s+party|participatory\s+dance|dance\s+practice|` +
	`dance\s+session|tea\s+dance|day\s+disco|dance\s+night` +
	`)\b`)

// activityRe is the broader participatory vocabulary used by the venue and
// ambiguity checks. It is a superset of the strong indicators.
var activityRe = regexp.MustCompile(`(?i)\b(` +
	`workshop|dance\s+class(?:es)?|lesson|aula|curso|` +
	`dance\s+social|social\s+dance|baile\s+social|` +
	`milonga|practica|praktika|pratica|` +
	`(?:dance|disco)\s+party|participatory\s+dance|dance\s+practice|` +
	`dance\s+session|tea\s+dance|day\s+disco|dance\s+night|` +
	`battle|dance\s+jam|contact\s+jam|zumba|cypher|freestyle\s+session|` +
	`open\s+styles|dancing|dance` +
	`)\b`)

// performanceNoiseRe marks staged-performance vocabulary: ballet works,
// recitals, competitions, tributes, broadcast/film terms. A match
// provisionally rejects the record unless a strong activity indicator is
// also present.
var performanceNoiseRe = regexp.MustCompile(`(?i)\b(` +
	`ballet|swan\s+lake|nutcracker|cinderella|giselle|romeo\s+and\s+juliet|don\s+quixote|sylphide|` +
	`showcase|recital|broadway|musical|opera|orchestra|choir|philharmonic|` +
	`film|screening|movie|play|production|theatrical|` +
	`concert|live\s+music|ft\.|feat\.|presents|gala|awards|comedy|stand-up|exhibition|` +
	`live\s+band|album\s+release|listening\s+party|artist\s+performs|band\s+performs|` +
	`dj\s+set|headliner|opening\s+act|special\s+guest|festival|` +
	`school\s+of\s+dance|year-end\s+recital|student\s+showcase|dance\s+academy\s+presents|` +
	`dance\s+company|ballet\s+company|dance\s+troupe|professional\s+dancers|profesionales|` +
	`championship|competition|tribute(?:\s+to)?|a\s+tribute|` +
	`live\s+on\s+stage|high\s+energy\s+show|fundraiser|charity\s+event|watch\s+party|` +
	`dance\s+show|dance\s+recital` +
	`)\b`)

// performanceVenueRe marks venues that primarily stage performances. The
// list mixes generic venue words with specific halls the feeds repeatedly
// emit.
var performanceVenueRe = regexp.MustCompile(`(?i)\b(` +
	`theatre|theater|arena|stadium|coliseum|amphitheat(?:er|re)|auditorium|` +
	`concert\s+hall|music\s+hall|pavilion|conservatory|performing\s+arts\s+center|` +
	`opera\s+house|guildhall|arts\s+centre|philharmonic\s+hall|` +
	`house\s+of\s+blues|thalia\s+hall|beachland\s+ballroom|crystal\s+ballroom|` +
	`teatro|anfiteatro` +
	`)\b`)
