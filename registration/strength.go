package registration

import "unicode/utf8"

const strongPasswordLength = 8

// PasswordStrength reports which character classes a password contains.
// It only drives UI hints and never blocks a submission.
type PasswordStrength struct {
	Lower  bool `json:"lower"`
	Upper  bool `json:"upper"`
	Digit  bool `json:"digit"`
	Symbol bool `json:"symbol"`
	Length bool `json:"length"`
	Strong bool `json:"strong"`
}

func CheckPasswordStrength(password string) PasswordStrength {
	var res PasswordStrength
	for _, r := range password {
		switch {
		case 'a' <= r && r <= 'z':
			res.Lower = true
		case 'A' <= r && r <= 'Z':
			res.Upper = true
		case '0' <= r && r <= '9':
			res.Digit = true
		default:
			res.Symbol = true
		}
	}
	res.Length = utf8.RuneCountInString(password) >= strongPasswordLength
	res.Strong = res.Lower && res.Upper && res.Digit && res.Symbol && res.Length
	return res
}
