package tax

type FilingStatus string

const (
	FilingStatusSingle          FilingStatus = "single"
	FilingStatusMarriedJoint    FilingStatus = "married_filing_jointly"
	FilingStatusMarriedSeparate FilingStatus = "married_filing_separately"
	FilingStatusHeadOfHousehold FilingStatus = "head_of_household"
)

// Bedrooms is the rent category requested for a monthly estimate.
type Bedrooms string

const (
	BedroomsStudio Bedrooms = "S"
	BedroomsOne    Bedrooms = "1"
	BedroomsTwo    Bedrooms = "2"
	BedroomsThree  Bedrooms = "3"
)

var AllBedrooms = []Bedrooms{BedroomsStudio, BedroomsOne, BedroomsTwo, BedroomsThree}

const DefaultYear = 2023
