package enums

// ActorRole is the role an organization plays on a given access transaction.
type ActorRole string

const (
	ActorRoleConsumer ActorRole = "consumer"
	ActorRoleSubject  ActorRole = "subject"
	ActorRoleHolder   ActorRole = "holder"
	ActorRoleNone     ActorRole = "none"
)

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}
