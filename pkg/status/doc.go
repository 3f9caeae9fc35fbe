// Package status persists worker status snapshots.
//
// A snapshot is a small JSON document describing where a worker stands:
// its lifecycle state, how much work it has done and when it last accepted a
// configuration. Workers write one on notable transitions so that an
// operator, or the status command, can inspect a running or stopped worker.
//
// # Usage
//
//	repo := status.NewFileRepository("/path/to/state/dir")
//
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	s.Iterations++
//	s.Touch(worker.StateRunning)
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// Snapshot JSON uses snake_case field names.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package status
