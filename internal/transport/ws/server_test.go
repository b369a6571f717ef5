package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelshapes.ai/internal/celltype"
	"voxelshapes.ai/internal/mesh"
	"voxelshapes.ai/internal/meshstore"
	"voxelshapes.ai/internal/protocol"
	"voxelshapes.ai/internal/service"
	"voxelshapes.ai/internal/shapecache"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cells, err := celltype.LoadCatalog("../../../configs/cells.yaml", nil)
	if err != nil {
		t.Fatalf("load cells: %v", err)
	}
	src := meshstore.Chain{meshstore.NewDir("../../../configs/meshes"), meshstore.NewPrimitives(8)}
	reg := mesh.NewRegistry(src)
	svc := service.New(cells, reg, shapecache.New(reg, shapecache.Options{}), nil)
	srv := NewServer(svc, Config{TuningDigest: "abc"}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return conn
}

func send(t *testing.T, conn *websocket.Conn, doc string) map[string]any {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(doc)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return m
}

func TestServer_HandshakeAndQueries(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	welcome := send(t, conn, `{"type":"HELLO","protocol_version":"1.0","client_name":"t","capabilities":{"max_queue":4}}`)
	if welcome["type"] != protocol.TypeWelcome || welcome["session_id"] == "" {
		t.Fatalf("welcome=%v", welcome)
	}
	if cells, _ := welcome["cells"].([]any); len(cells) != 5 {
		t.Fatalf("cells=%v", welcome["cells"])
	}

	shape := send(t, conn, `{"type":"SHAPE_QUERY","protocol_version":"1.0","id":"q1","cell":"stone","pos":[3,0,-2]}`)
	if shape["type"] != protocol.TypeShape || shape["id"] != "q1" {
		t.Fatalf("shape=%v", shape)
	}
	boxes, _ := shape["boxes"].([]any)
	if len(boxes) != 1 {
		t.Fatalf("boxes=%v", shape["boxes"])
	}
	if b := boxes[0].([]any); b[0] != 3.0 || b[2] != -2.0 || b[3] != 4.0 || b[5] != -1.0 {
		t.Fatalf("box=%v", b)
	}

	placed := send(t, conn, `{"type":"PLACE","protocol_version":"1.0","id":"p1","cell":"stone_slab","pos":[0,0,0],"facing":"west","face":"up","hit":[0.5,0,0.5]}`)
	if placed["type"] != protocol.TypePlaced || placed["config"] != "facing=west,half=bottom" {
		t.Fatalf("placed=%v", placed)
	}

	bakedMsg := send(t, conn, `{"type":"BAKE","protocol_version":"1.0","id":"b1","cell":"slope","props":{"facing":"south"},"face":"south"}`)
	if bakedMsg["type"] != protocol.TypeBaked {
		t.Fatalf("baked=%v", bakedMsg)
	}
	layers, _ := bakedMsg["layers"].([]any)
	if len(layers) != 1 {
		t.Fatalf("turned back face should cull south: %v", bakedMsg["layers"])
	}
}

func TestServer_Errors(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	send(t, conn, `{"type":"HELLO","protocol_version":"1.0","client_name":"t"}`)

	cases := []struct {
		doc  string
		code string
	}{
		{`{"type":"SHAPE_QUERY","protocol_version":"1.0","id":"e1","cell":"glass","pos":[0,0,0]}`, protocol.ErrUnknownCell},
		{`{"type":"SHAPE_QUERY","protocol_version":"1.0","id":"e2","cell":"slope","props":{"facing":"up"},"pos":[0,0,0]}`, protocol.ErrUnknownProperty},
		{`{"type":"SHAPE_QUERY","protocol_version":"0.1","id":"e3","cell":"stone","pos":[0,0,0]}`, protocol.ErrProtoVersion},
		{`{"type":"PLACE","protocol_version":"1.0","id":"e4","cell":"slope","pos":[0,0,0],"facing":"sideways","hit":[0,0,0]}`, protocol.ErrBadRequest},
		{`{"type":"ACT","protocol_version":"1.0","id":"e5"}`, protocol.ErrProtoBadRequest},
		{`not json`, protocol.ErrProtoBadRequest},
	}
	for _, c := range cases {
		m := send(t, conn, c.doc)
		if m["type"] != protocol.TypeError || m["code"] != c.code {
			t.Fatalf("%s: got %v want %s", c.doc, m, c.code)
		}
	}
}

func TestServer_RejectsMissingHello(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"SHAPE_QUERY","protocol_version":"1.0"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
