package entity

// User is a bucketed identity reachable through any of its external ids.
// ID is a server-generated UUID and never changes once assigned. Every
// external id in the list owns a uniqueness index record pointing back at
// this user whenever the user is externally observable.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Data is an opaque payload carried for the caller.
	Data string `json:"data"`

	// ExternalIDs are the alternate identifiers this user is reachable by.
	// Order is the order supplied at creation time.
	ExternalIDs []ExternalID `json:"externalIds"`
}
