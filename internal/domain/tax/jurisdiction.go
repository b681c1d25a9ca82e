package tax

import (
	"fmt"
	"strings"
)

type Jurisdiction string

const Federal Jurisdiction = "federal"

func (j Jurisdiction) IsFederal() bool { return j == Federal }

// StateNames maps USPS codes to the dashed names rent listings use in their URLs.
var StateNames = map[Jurisdiction]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"CT": "Connecticut",
	"DE": "Delaware",
	"FL": "Florida",
	"GA": "Georgia",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IN": "Indiana",
	"IA": "Iowa",
	"KS": "Kansas",
	"KY": "Kentucky",
	"LA": "Louisiana",
	"ME": "Maine",
	"MD": "Maryland",
	"MA": "Massachusetts",
	"MI": "Michigan",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NH": "New-Hampshire",
	"NJ": "New-Jersey",
	"NM": "New-Mexico",
	"NY": "New-York",
	"NC": "North-Carolina",
	"ND": "North-Dakota",
	"OH": "Ohio",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"PA": "Pennsylvania",
	"RI": "Rhode-Island",
	"SC": "South-Carolina",
	"SD": "South-Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"VT": "Vermont",
	"VA": "Virginia",
	"WA": "Washington",
	"WV": "West-Virginia",
	"WI": "Wisconsin",
	"WY": "Wyoming",
	"DC": "District-of-Columbia",
}

// ParseJurisdiction accepts "federal" or a state code in any case.
func ParseJurisdiction(raw string) (Jurisdiction, error) {
	value := strings.TrimSpace(raw)
	if strings.EqualFold(value, string(Federal)) {
		return Federal, nil
	}
	code := Jurisdiction(strings.ToUpper(value))
	if _, ok := StateNames[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownJurisdiction, raw)
	}
	return code, nil
}

// ParseState is ParseJurisdiction restricted to state codes.
func ParseState(raw string) (Jurisdiction, error) {
	j, err := ParseJurisdiction(raw)
	if err != nil {
		return "", err
	}
	if j.IsFederal() {
		return "", fmt.Errorf("%w: state code required, got %q", ErrInvalidArgument, raw)
	}
	return j, nil
}

func ParseBedrooms(raw string) (Bedrooms, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "S", "STUDIO", "0":
		return BedroomsStudio, nil
	case "1":
		return BedroomsOne, nil
	case "2":
		return BedroomsTwo, nil
	case "3":
		return BedroomsThree, nil
	}
	return "", fmt.Errorf("%w: unsupported bedroom count %q", ErrInvalidArgument, raw)
}
