package projections

import (
	"context"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/contact"
)

// GetContactsResult carries every emergency contact.
type GetContactsResult struct {
	Contacts []contact.EmergencyContact `json:"contacts"`
	Users    int                        `json:"users"`
}

// GetContactsDeps holds dependencies for the SOS contacts projection.
type GetContactsDeps struct {
	Contacts records.ContactReader
}

// QueryGetContacts lists emergency contacts, newest first.
func QueryGetContacts(ctx context.Context, deps GetContactsDeps) (GetContactsResult, error) {
	contacts, err := deps.Contacts.ListEmergencyContacts(ctx)
	if err != nil {
		return GetContactsResult{}, err
	}
	if contacts == nil {
		contacts = []contact.EmergencyContact{}
	}
	return GetContactsResult{Contacts: contacts, Users: contact.CountUsers(contacts)}, nil
}
