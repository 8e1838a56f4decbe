package rental

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Rules is the ordered list of a car's house rules. It is stored as a JSON
// array in the rules column. Rows written with the older comma-joined text
// are still decoded.
type Rules []string

// Value implements driver.Valuer.
func (r Rules) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *Rules) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case nil:
		*r = Rules{}
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Rules", src)
	}

	// Legacy text may itself start with a bracket, so anything that is not
	// a JSON array falls back to the comma form.
	if strings.HasPrefix(strings.TrimSpace(text), "[") {
		var rules []string
		if err := json.Unmarshal([]byte(text), &rules); err == nil {
			if rules == nil {
				rules = []string{}
			}
			*r = rules
			return nil
		}
	}
	*r = SplitRules(text)
	return nil
}

// JoinRules renders rules in the legacy text form, joined with ", ".
func JoinRules(rules []string) string {
	return strings.Join(rules, ", ")
}

// SplitRules decodes the legacy text form by splitting on ",". Elements keep
// their surrounding whitespace and an empty string yields one empty element.
func SplitRules(text string) Rules {
	return strings.Split(text, ",")
}
