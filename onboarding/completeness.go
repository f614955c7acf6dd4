package onboarding

import "github.com/movelink/movekit/provider"

// Completeness is the profile-completeness ladder position.
type Completeness int

// Ladder positions, least to most complete.
const (
	EmptyProfile Completeness = iota
	DODInfoComplete
	NameComplete
	ContactInfoComplete
	DutyStationComplete
	AddressComplete
	BackupAddressComplete
	BackupContactsComplete
)

// String returns the string representation of Completeness
func (c Completeness) String() string {
	switch c {
	case EmptyProfile:
		return "EMPTY_PROFILE"
	case DODInfoComplete:
		return "DOD_INFO_COMPLETE"
	case NameComplete:
		return "NAME_COMPLETE"
	case ContactInfoComplete:
		return "CONTACT_INFO_COMPLETE"
	case DutyStationComplete:
		return "DUTY_STATION_COMPLETE"
	case AddressComplete:
		return "ADDRESS_COMPLETE"
	case BackupAddressComplete:
		return "BACKUP_ADDRESS_COMPLETE"
	case BackupContactsComplete:
		return "BACKUP_CONTACTS_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// nullUUID marks a duty station that was never actually chosen.
const nullUUID = "00000000-0000-0000-0000-000000000000"

// Compute derives the ladder position from which service-member fields are
// populated. Pure; recomputed on every read and never persisted.
func Compute(member provider.Record) Completeness {
	if member == nil || !hasValue(member, "affiliation") || !hasValue(member, "edipi") {
		return EmptyProfile
	}
	if !hasValue(member, "first_name") || !hasValue(member, "last_name") {
		return DODInfoComplete
	}
	if !hasValue(member, "telephone") || !hasValue(member, "personal_email") {
		return NameComplete
	}
	if !hasDutyStation(member) {
		return ContactInfoComplete
	}
	if !hasAddress(member, "residential_address") {
		return DutyStationComplete
	}
	if !hasAddress(member, "backup_mailing_address") {
		return AddressComplete
	}
	if !hasBackupContacts(member) {
		return BackupAddressComplete
	}
	return BackupContactsComplete
}

func hasValue(member provider.Record, field string) bool {
	value, ok := member[field].(string)
	return ok && value != ""
}

func hasDutyStation(member provider.Record) bool {
	station, ok := member["current_station"].(map[string]any)
	if !ok {
		// already normalized to an id reference
		id, isRef := member["current_station"].(string)
		return isRef && id != "" && id != nullUUID
	}
	id, _ := station["id"].(string)
	return id != "" && id != nullUUID
}

func hasAddress(member provider.Record, field string) bool {
	address, ok := member[field].(map[string]any)
	if !ok {
		return false
	}
	street, _ := address["street_address_1"].(string)
	return street != ""
}

func hasBackupContacts(member provider.Record) bool {
	contacts, ok := member["backup_contacts"].([]any)
	return ok && len(contacts) > 0
}
