package domain

// SupportAgent models a human agent tickets can be assigned to.
//
// Assignment does not flip Available; agents work several tickets at once and
// the flag is managed outside this service.
type SupportAgent struct {
	ID        int64
	Name      string
	Email     *string
	Phone     *string
	Available bool
}
