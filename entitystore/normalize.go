package entitystore

import (
	"fmt"

	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/provider"
)

// Entity-type bucket names, matching what the backend payloads reference.
const (
	TypeUser           = "user"
	TypeServiceMembers = "serviceMembers"
	TypeRoles          = "roles"
	TypeOrders         = "orders"
	TypeMoves          = "moves"
	TypeMTOShipments   = "mtoShipments"
	TypeBackupContacts = "backupContacts"
)

// relation describes one embedded sub-object (or list of them) inside a
// record: the field it lives under, the bucket its records belong to, and
// whether the field is a collection.
type relation struct {
	field      string
	entityType string
	many       bool
}

// schema lists, per entity type, which fields embed related records. After
// flattening, each such field holds only the related record id(s).
var schema = map[string][]relation{
	TypeUser: {
		{field: "service_member", entityType: TypeServiceMembers},
		{field: "roles", entityType: TypeRoles, many: true},
	},
	TypeServiceMembers: {
		{field: "orders", entityType: TypeOrders, many: true},
		{field: "backup_contacts", entityType: TypeBackupContacts, many: true},
	},
	TypeOrders: {
		{field: "moves", entityType: TypeMoves, many: true},
	},
	TypeMoves: {
		{field: "mto_shipments", entityType: TypeMTOShipments, many: true},
	},
}

// Normalize flattens one nested payload into per-type record sets. Embedded
// sub-objects are extracted into their own buckets and replaced by their
// ids; fields that already hold id references pass through unchanged.
func Normalize(entityType string, payload provider.Record) (Entities, error) {
	entities := make(Entities)
	if _, err := flatten(entityType, payload, entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// NormalizeMany flattens a collection payload, such as the shipment list
// returned for a move.
func NormalizeMany(entityType string, payloads []provider.Record) (Entities, error) {
	entities := make(Entities)
	for _, payload := range payloads {
		if _, err := flatten(entityType, payload, entities); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func flatten(entityType string, record provider.Record, out Entities) (string, error) {
	if record == nil {
		return "", errors.WrapContract(fmt.Errorf("nil %s payload", entityType),
			"entitystore", "Normalize", "payload validation")
	}
	id, err := recordID(entityType, record)
	if err != nil {
		return "", err
	}

	flat := record.Clone()
	for _, rel := range schema[entityType] {
		raw, present := flat[rel.field]
		if !present || raw == nil {
			continue
		}

		if rel.many {
			list, ok := raw.([]any)
			if !ok {
				continue
			}
			ids := make([]any, 0, len(list))
			for _, item := range list {
				nested, isObject := item.(map[string]any)
				if !isObject {
					// already an id reference
					ids = append(ids, item)
					continue
				}
				nestedID, err := flatten(rel.entityType, provider.Record(nested), out)
				if err != nil {
					return "", err
				}
				ids = append(ids, nestedID)
			}
			flat[rel.field] = ids
			continue
		}

		nested, isObject := raw.(map[string]any)
		if !isObject {
			continue
		}
		nestedID, err := flatten(rel.entityType, provider.Record(nested), out)
		if err != nil {
			return "", err
		}
		flat[rel.field] = nestedID
	}

	bucket, exists := out[entityType]
	if !exists {
		bucket = make(map[string]provider.Record)
		out[entityType] = bucket
	}
	bucket[id] = flat

	return id, nil
}

func recordID(entityType string, record provider.Record) (string, error) {
	raw, ok := record.ID()
	if !ok {
		return "", errors.WrapContract(fmt.Errorf("%s record has no id", entityType),
			"entitystore", "Normalize", "payload validation")
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", errors.WrapContract(fmt.Errorf("%s record id %v is not a string", entityType, raw),
			"entitystore", "Normalize", "payload validation")
	}
	return id, nil
}
