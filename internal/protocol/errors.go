package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Catalog lookups.
	ErrUnknownCell     = "E_UNKNOWN_CELL"
	ErrUnknownProperty = "E_UNKNOWN_PROPERTY"

	// Query layer.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrMeshUnavailable = "E_MESH_UNAVAILABLE"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrUnknownCell:     {},
	ErrUnknownProperty: {},
	ErrBadRequest:      {},
	ErrMeshUnavailable: {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
