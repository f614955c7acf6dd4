package provider

import "reflect"

// updateBody builds the PATCH body for an update: only keys whose values
// differ between previousData and data are sent, with two forced
// exceptions. A changed roles field is always sent whole, since roles is a
// replace-whole-collection field on the backend. A non-nil active field is
// always included even when unchanged, so active-state toggles stay
// explicit.
func updateBody(previousData, data Record) Record {
	body := make(Record)

	for key, value := range data {
		previous, existed := previousData[key]
		if !existed || !reflect.DeepEqual(previous, value) {
			body[key] = value
		}
	}

	// roles is never partially diffed
	if _, changed := body["roles"]; changed {
		body["roles"] = data["roles"]
	}

	if active, ok := data["active"]; ok && active != nil {
		body["active"] = active
	}

	return body
}
