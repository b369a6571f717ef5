package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	Bake     bool `json:"bake,omitempty"`
	MaxQueue int  `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Cells           []CellRef      `json:"cells"`
}

type CatalogDigests struct {
	Cells        DigestRef `json:"cells"`
	TuningDigest string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CellRef describes one cell type: its orientation kind and property slots
// in slot order.
type CellRef struct {
	Name           string    `json:"name"`
	Orientation    string    `json:"orientation"`
	Configurations int       `json:"configurations"`
	Slots          []SlotRef `json:"slots"`
	Meshes         []string  `json:"meshes,omitempty"`
}

type SlotRef struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// SHAPE_QUERY (client -> server): collision boxes of a cell at a position.
// Props may leave slots out; they take their first value.
type ShapeQueryMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ID              string            `json:"id,omitempty"`
	Cell            string            `json:"cell"`
	Props           map[string]string `json:"props,omitempty"`
	Pos             [3]int            `json:"pos"`
}

// SHAPE (server -> client)
type ShapeMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ID              string            `json:"id,omitempty"`
	Cell            string            `json:"cell"`
	Config          string            `json:"config"`
	Props           map[string]string `json:"props"`
	Pos             [3]int            `json:"pos"`
	Boxes           [][6]float64      `json:"boxes"`
	Cached          bool              `json:"cached,omitempty"`
	Fallback        bool              `json:"fallback,omitempty"`
	Warning         string            `json:"warning,omitempty"`
}

// PLACE (client -> server): resolve the configuration a new cell starts
// with. Hit is the raw click point relative to the clicked face's cell.
type PlaceMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ID              string     `json:"id,omitempty"`
	Cell            string     `json:"cell"`
	Pos             [3]int     `json:"pos"`
	Facing          string     `json:"facing"`
	Face            string     `json:"face,omitempty"`
	Hit             [3]float64 `json:"hit"`
	Placer          string     `json:"placer,omitempty"`
}

// PLACED (server -> client)
type PlacedMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ID              string            `json:"id,omitempty"`
	Cell            string            `json:"cell"`
	Config          string            `json:"config"`
	Props           map[string]string `json:"props"`
	Pos             [3]int            `json:"pos"`
	Boxes           [][6]float64      `json:"boxes"`
	Fallback        bool              `json:"fallback,omitempty"`
}

// BAKE (client -> server): render quads of one cell configuration in cell
// space. Face filters by cull face; empty means unculled quads.
type BakeMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ID              string            `json:"id,omitempty"`
	Cell            string            `json:"cell"`
	Props           map[string]string `json:"props,omitempty"`
	Face            string            `json:"face,omitempty"`
}

// BAKED (server -> client)
type BakedMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ID              string     `json:"id,omitempty"`
	Cell            string     `json:"cell"`
	Config          string     `json:"config"`
	Layers          []LayerOut `json:"layers"`
	AO              bool       `json:"ambient_occlusion"`
	Gui3D           bool       `json:"gui3d"`
}

type LayerOut struct {
	Layer string    `json:"layer"`
	Quads []QuadOut `json:"quads"`
}

type QuadOut struct {
	Vertices [4][3]float64 `json:"vertices"`
	UVs      [4][2]float64 `json:"uvs"`
	Normal   [3]float64    `json:"normal"`
	Tint     int           `json:"tint"`
	Texture  string        `json:"texture,omitempty"`
	Cull     string        `json:"cull"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(id, code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, ID: id, Code: code, Message: message}
}
