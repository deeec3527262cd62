package storage

import "errors"

// Error taxonomy surfaced by the engine. NodeNotFound and NodeExists are
// internal signals: callers one layer up (the VFS facade) translate
// NodeNotFound into FileNotFound/FolderNotFound based on what the
// operation expected, and NodeExists into the public NodeExists. Every
// other kind maps to its public equivalent of the same name.
var (
	ErrNodeNotFound   = errors.New("storage: node not found")
	ErrNodeExists     = errors.New("storage: node exists")
	ErrFolderNotEmpty = errors.New("storage: folder not empty")
	ErrCorruptFormat  = errors.New("storage: corrupt format")
	ErrShortRead      = errors.New("storage: short read")
	ErrInternal       = errors.New("storage: internal error")
)
