package store

// UserIdentity is the resolved identity behind a bearer token.
type UserIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Profile is the entitlement row for a user.
type Profile struct {
	ID    string `json:"id"`
	IsPro bool   `json:"is_pro"`
}

// Exercise is one row returned by the similarity-search RPC, ordered by
// descending similarity on the store side.
type Exercise struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MuscleGroup string  `json:"muscle_group,omitempty"`
	Equipment   string  `json:"equipment,omitempty"`
	Similarity  float64 `json:"similarity"`
}
