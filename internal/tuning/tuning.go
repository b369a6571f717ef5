package tuning

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	VoxelResolution   int  `yaml:"voxel_resolution"`
	PrimitiveCells    int  `yaml:"primitive_cells"`
	EmptyBackoffMs    int  `yaml:"empty_backoff_ms"`
	MaxEmptyBackoffMs int  `yaml:"max_empty_backoff_ms"`
	PreloadMeshes     bool `yaml:"preload_meshes"`

	Server Server `yaml:"server"`
}

type Server struct {
	HandshakeTimeoutMs int `yaml:"handshake_timeout_ms"`
	IdleTimeoutMs      int `yaml:"idle_timeout_ms"`
	MaxMessageBytes    int `yaml:"max_message_bytes"`
	OutQueue           int `yaml:"out_queue"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:   "1.0",
		VoxelResolution:   8,
		PrimitiveCells:    16,
		EmptyBackoffMs:    250,
		MaxEmptyBackoffMs: 8000,
		Server: Server{
			HandshakeTimeoutMs: 5000,
			IdleTimeoutMs:      60000,
			MaxMessageBytes:    64 * 1024,
			OutQueue:           64,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Normalize fills zero values from the defaults.
func (t *Tuning) Normalize() {
	d := Defaults()
	if strings.TrimSpace(t.ProtocolVersion) == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.VoxelResolution == 0 {
		t.VoxelResolution = d.VoxelResolution
	}
	if t.PrimitiveCells == 0 {
		t.PrimitiveCells = d.PrimitiveCells
	}
	if t.MaxEmptyBackoffMs < t.EmptyBackoffMs {
		t.MaxEmptyBackoffMs = t.EmptyBackoffMs
	}
	if t.Server.HandshakeTimeoutMs == 0 {
		t.Server.HandshakeTimeoutMs = d.Server.HandshakeTimeoutMs
	}
	if t.Server.IdleTimeoutMs == 0 {
		t.Server.IdleTimeoutMs = d.Server.IdleTimeoutMs
	}
	if t.Server.MaxMessageBytes == 0 {
		t.Server.MaxMessageBytes = d.Server.MaxMessageBytes
	}
	if t.Server.OutQueue == 0 {
		t.Server.OutQueue = d.Server.OutQueue
	}
}

func (t Tuning) Validate() error {
	if t.VoxelResolution < 1 || t.VoxelResolution > 64 {
		return fmt.Errorf("voxel_resolution must be in [1, 64]")
	}
	if t.PrimitiveCells < 4 || t.PrimitiveCells > 256 {
		return fmt.Errorf("primitive_cells must be in [4, 256]")
	}
	if t.EmptyBackoffMs < 0 {
		return fmt.Errorf("empty_backoff_ms must be >= 0")
	}
	if t.Server.HandshakeTimeoutMs <= 0 || t.Server.IdleTimeoutMs <= 0 {
		return fmt.Errorf("server timeouts must be > 0")
	}
	if t.Server.MaxMessageBytes < 1024 {
		return fmt.Errorf("server.max_message_bytes must be >= 1024")
	}
	if t.Server.OutQueue <= 0 {
		return fmt.Errorf("server.out_queue must be > 0")
	}
	return nil
}

func (t Tuning) EmptyBackoff() time.Duration {
	return time.Duration(t.EmptyBackoffMs) * time.Millisecond
}

func (t Tuning) MaxEmptyBackoff() time.Duration {
	return time.Duration(t.MaxEmptyBackoffMs) * time.Millisecond
}

func (s Server) HandshakeTimeout() time.Duration {
	return time.Duration(s.HandshakeTimeoutMs) * time.Millisecond
}

func (s Server) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMs) * time.Millisecond
}
