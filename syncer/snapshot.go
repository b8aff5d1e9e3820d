package syncer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Snapshot suffixes. The source snapshot keeps the record exactly as the
// catalogue returned it; the mapped snapshot keeps what was (or would have
// been) sent to the portal. Snapshots make every push reproducible after
// the fact.
const (
	sourceSnapshotSuffix = ".bc.json"
	mappedSnapshotSuffix = ".eosc.json"
)

// snapshotPath builds the snapshot file name for one service. Path
// separators in service names are flattened so a hostile name cannot
// escape the snapshot directory.
func snapshotPath(dir, vre, service, suffix string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_")
	return filepath.Join(dir, fmt.Sprintf("_service_%s___%s%s",
		safe.Replace(vre), safe.Replace(service), suffix))
}

// writeSnapshot stores one record as indented JSON. Failing to snapshot is
// an error: a push that cannot be reproduced later must not happen.
func writeSnapshot(dir, vre, service, suffix string, record any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir %q: %w", dir, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot for %q: %w", service, err)
	}

	path := snapshotPath(dir, vre, service, suffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %q: %w", path, err)
	}
	return nil
}
