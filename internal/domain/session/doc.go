// Package session implements the desktop session: the single state
// container that owns a browser session's windows, its virtual file
// system and the pointer gesture in flight.
//
// A Desktop serializes its operations. File-system operations are total:
// each either applies fully and reports true, or leaves the tree untouched
// and reports false. Every applied change replaces the tree wholesale and
// hands the new snapshot to a Persister, which writes it in the background:
//
//	store, _ := backend.Open(ctx, cfg.Store, metrics, logger)
//	persister := session.NewAsyncPersister(store, logger, metrics)
//	sessions := session.NewManager(store, persister, session.Config{}, metrics, logger)
//
//	desk := sessions.Create()
//	desk.CreateFile(vfs.Path{"C:", "Documents"}, "a.txt", "hello")
//	desk.MoveToRecycleBin(vfs.Path{"C:", "Documents"}, "a.txt")
//
// Manager keeps live desktops in memory, resumes stored ones by id and
// evicts idle ones. Stored trees that are missing or malformed fall back
// to the default tree.
package session
