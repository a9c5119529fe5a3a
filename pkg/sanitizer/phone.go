package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "US"

var rePhoneShape = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{6,24}$`)

// NormalizePhone returns phone in E.164 form, or "" when it is not a valid
// number.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if !rePhoneShape.MatchString(phone) {
		return ""
	}

	num, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// NormalizeContactInfo canonicalizes a vendor's contact string: phone
// numbers become E.164, email addresses are lowercased, anything else is
// whitespace-normalized.
func NormalizeContactInfo(contact string) string {
	contact = TrimAndNormalize(contact)
	if contact == "" {
		return ""
	}
	if e164 := NormalizePhone(contact); e164 != "" {
		return e164
	}
	if strings.Contains(contact, "@") && !strings.Contains(contact, " ") {
		return NormalizeEmail(contact)
	}
	return contact
}
