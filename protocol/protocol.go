package protocol

const (
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

const (
	FrameHz     = 30
	DefaultPort = 1313
)

const (
	// LegacyBufferSize is the receive buffer older peers read with.
	LegacyBufferSize = 5345
	// DefaultMaxFrame bounds a single length-prefixed frame.
	DefaultMaxFrame = 1 << 16
)

// Role identifies which side of the session a peer or entity belongs to.
type Role string

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleClient
}

// Opposite returns the role of the other peer.
func (r Role) Opposite() Role {
	if r == RoleHost {
		return RoleClient
	}
	return RoleHost
}
