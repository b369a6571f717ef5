package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_RepoConfig(t *testing.T) {
	tu, err := Load("../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning.yaml: %v", err)
	}
	if tu.ProtocolVersion != "1.0" || tu.VoxelResolution != 8 {
		t.Fatalf("unexpected tuning: %+v", tu)
	}
	if tu.EmptyBackoff() != 250*time.Millisecond || tu.MaxEmptyBackoff() < tu.EmptyBackoff() {
		t.Fatalf("backoff=%v max=%v", tu.EmptyBackoff(), tu.MaxEmptyBackoff())
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("voxel_resolution: 16\nempty_backoff_ms: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu.VoxelResolution != 16 || tu.EmptyBackoff() != 0 {
		t.Fatalf("overrides lost: %+v", tu)
	}
	if tu.Server.OutQueue != Defaults().Server.OutQueue || tu.PrimitiveCells != 16 {
		t.Fatalf("defaults lost: %+v", tu)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"resolution": "voxel_resolution: 100\n",
		"backoff":    "empty_backoff_ms: -5\n",
		"syntax":     "voxel_resolution: [\n",
	}
	for name, body := range cases {
		p := filepath.Join(t.TempDir(), "tuning.yaml")
		_ = os.WriteFile(p, []byte(body), 0o644)
		_, err := Load(p)
		if err == nil || !strings.HasPrefix(err.Error(), "tuning.yaml:") {
			t.Fatalf("%s: expected tuning.yaml error, got %v", name, err)
		}
	}
}

func TestLoad_EmptyPathIsDefaults(t *testing.T) {
	tu, err := Load("")
	if err != nil || tu != Defaults() {
		t.Fatalf("got %+v, %v", tu, err)
	}
}
