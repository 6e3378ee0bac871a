package lead

import "regexp"

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Deliberately permissive: it will match prices or dates embedded in
	// chat text. The length guard below rejects the shortest noise; treat
	// the result as a heuristic signal, not a validated contact.
	phoneRegex = regexp.MustCompile(`(\+?\d{1,4}[-.\s]?)?\(?\d{1,3}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}`)
)

// minPhoneLength rejects short digit runs (years, counts, order ids).
const minPhoneLength = 6

// Contact is whatever contact info was spotted in free text.
type Contact struct {
	Email string
	Phone string
}

func (c Contact) Empty() bool {
	return c.Email == "" && c.Phone == ""
}

// ToMap shapes the contact for a session-document lead merge. Absent fields
// are omitted so a merge never clears a previously captured value.
func (c Contact) ToMap() map[string]interface{} {
	m := map[string]interface{}{}
	if c.Email != "" {
		m["email"] = c.Email
	}
	if c.Phone != "" {
		m["phone"] = c.Phone
	}
	return m
}

// Extract scans user text for an email and a phone number.
func Extract(text string) Contact {
	var contact Contact

	if match := emailRegex.FindString(text); match != "" {
		contact.Email = match
	}
	if match := phoneRegex.FindString(text); len(match) > minPhoneLength {
		contact.Phone = match
	}

	return contact
}
