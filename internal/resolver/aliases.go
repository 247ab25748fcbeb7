package resolver

// DefaultTeamAliases maps common abbreviations and city names to official
// franchise names. Keys are normalized forms; values pass through the team
// universe for canonical preference.
func DefaultTeamAliases() map[string]string {
	return map[string]string{
		"csk":       "Chennai Super Kings",
		"mi":        "Mumbai Indians",
		"rcb":       "Royal Challengers Bangalore",
		"kkr":       "Kolkata Knight Riders",
		"srh":       "Sunrisers Hyderabad",
		"rr":        "Rajasthan Royals",
		"dc":        "Delhi Capitals",
		"dd":        "Delhi Daredevils",
		"kxip":      "Kings XI Punjab",
		"pbks":      "Punjab Kings",
		"rps":       "Rising Pune Supergiant",
		"pwi":       "Pune Warriors",
		"gl":        "Gujarat Lions",
		"ktk":       "Kochi Tuskers Kerala",
		"delhi":     "Delhi Capitals",
		"punjab":    "Punjab Kings",
		"bangalore": "Royal Challengers Bangalore",
		"bengaluru": "Royal Challengers Bangalore",
		"mumbai":    "Mumbai Indians",
		"chennai":   "Chennai Super Kings",
	}
}

// DefaultPlayerAliases maps well-known full names to the initials+surname
// form cricsheet uses. Deliberately short; the initials-key index covers the
// general case.
func DefaultPlayerAliases() map[string]string {
	return map[string]string{
		"rohit sharma":     "RG Sharma",
		"virat kohli":      "V Kohli",
		"sachin tendulkar": "SR Tendulkar",
		"sourav ganguly":   "SC Ganguly",
		"rahul dravid":     "R Dravid",
		"ms dhoni":         "MS Dhoni",
		"gautam gambhir":   "G Gambhir",
		"ab de villiers":   "AB de Villiers",
	}
}
