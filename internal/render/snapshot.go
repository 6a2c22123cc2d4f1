package render

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/skst328/scope-timer/internal/tree"
)

// SnapshotSchema is bumped whenever SnapshotPayload changes shape.
const SnapshotSchema uint16 = 1

// SnapshotPayload is the msgpack document written by Snapshot.
type SnapshotPayload struct {
	Schema  uint16         `msgpack:"schema"`
	Version string         `msgpack:"version,omitempty"`
	Tree    *tree.Snapshot `msgpack:"tree"`
}

// Snapshot encodes the raw tree (paths and accumulator fields) as msgpack.
func Snapshot(w io.Writer, snap *tree.Snapshot, version string) error {
	if snap == nil {
		snap = &tree.Snapshot{}
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&SnapshotPayload{
		Schema:  SnapshotSchema,
		Version: version,
		Tree:    snap,
	})
}
