package domain

import (
	"strings"
	"unicode/utf8"
)

// Address validation messages.
const (
	MsgUnsupportedCountry = "delivery is only available to Belarus and Russia"
	MsgCityTooShort       = "city name is too short"
	MsgAddressTooShort    = "address must be more detailed"
)

const (
	minCityLength    = 2
	minAddressLength = 5
)

// supportedCountries are matched case-insensitively as substrings of Address.Country.
var supportedCountries = []string{"Беларусь", "Belarus", "Россия", "Russia", "РФ"}

// AddressValidation is the advisory result of ValidateAddress.
type AddressValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateAddress checks an address against the delivery policy.
// Lengths are counted in characters, not bytes.
func ValidateAddress(a Address) AddressValidation {
	problems := []string{}

	if !countrySupported(a.Country) {
		problems = append(problems, MsgUnsupportedCountry)
	}
	if utf8.RuneCountInString(a.City) < minCityLength {
		problems = append(problems, MsgCityTooShort)
	}
	if utf8.RuneCountInString(a.Address) < minAddressLength {
		problems = append(problems, MsgAddressTooShort)
	}

	return AddressValidation{
		Valid:  len(problems) == 0,
		Errors: problems,
	}
}

func countrySupported(country string) bool {
	lower := strings.ToLower(country)
	for _, c := range supportedCountries {
		if strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}
