package domain

// ListOpts carries pagination parameters for list endpoints.
type ListOpts struct {
	Limit  int
	Offset int
}
