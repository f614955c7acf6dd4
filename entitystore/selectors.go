package entitystore

import "github.com/movelink/movekit/provider"

// LoggedInUser returns the stored user record, or nil when no user has been
// loaded. The store only ever holds the current session's user; with more
// than one present the lowest id wins for determinism.
func (s *Store) LoggedInUser() provider.Record {
	users := s.All(TypeUser)
	if len(users) == 0 {
		return nil
	}
	return users[0]
}

// ServiceMemberForUser resolves the logged-in user's service_member
// reference. Returns nil when there is no user or the user carries no
// service-member profile.
func (s *Store) ServiceMemberForUser() provider.Record {
	user := s.LoggedInUser()
	if user == nil {
		return nil
	}
	id, ok := user["service_member"].(string)
	if !ok || id == "" {
		return nil
	}
	member, _ := s.Get(TypeServiceMembers, id)
	return member
}

// RoleTypesForUser returns the role types of the roles attached to the
// logged-in user, in the order the user record lists them. Role references
// that resolve to nothing are skipped.
func (s *Store) RoleTypesForUser() []string {
	user := s.LoggedInUser()
	if user == nil {
		return nil
	}

	types := []string{}
	for _, id := range referenceIDs(user["roles"]) {
		role, exists := s.Get(TypeRoles, id)
		if !exists {
			continue
		}
		if roleType, ok := role["roleType"].(string); ok && roleType != "" {
			types = append(types, roleType)
		}
	}
	return types
}

// BackupContacts returns the service member's backup contacts in the order
// the service-member record lists them.
func (s *Store) BackupContacts() []provider.Record {
	member := s.ServiceMemberForUser()
	if member == nil {
		return nil
	}

	contacts := []provider.Record{}
	for _, id := range referenceIDs(member["backup_contacts"]) {
		if contact, exists := s.Get(TypeBackupContacts, id); exists {
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

// OrdersForServiceMember returns the orders attached to the logged-in
// user's service member.
func (s *Store) OrdersForServiceMember() []provider.Record {
	member := s.ServiceMemberForUser()
	if member == nil {
		return nil
	}

	orders := []provider.Record{}
	for _, id := range referenceIDs(member["orders"]) {
		if order, exists := s.Get(TypeOrders, id); exists {
			orders = append(orders, order)
		}
	}
	return orders
}

// MovesForOrders returns the moves attached to the given orders record.
func (s *Store) MovesForOrders(ordersID string) []provider.Record {
	order, exists := s.Get(TypeOrders, ordersID)
	if !exists {
		return nil
	}

	moves := []provider.Record{}
	for _, id := range referenceIDs(order["moves"]) {
		if move, found := s.Get(TypeMoves, id); found {
			moves = append(moves, move)
		}
	}
	return moves
}

// ShipmentsForMove returns the MTO shipments whose moveTaskOrderID matches
// the given move, ordered by id.
func (s *Store) ShipmentsForMove(moveID string) []provider.Record {
	shipments := []provider.Record{}
	for _, shipment := range s.All(TypeMTOShipments) {
		if shipment["moveTaskOrderID"] == moveID {
			shipments = append(shipments, shipment)
		}
	}
	return shipments
}

// referenceIDs coerces a flattened relation field into its id list.
func referenceIDs(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(list))
	for _, item := range list {
		if id, isString := item.(string); isString && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
