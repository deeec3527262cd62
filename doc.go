// Package filevfs implements a virtual filesystem embedded in a single
// host file. The entire tree — folder structure, names, and file
// contents — lives in one byte-addressable backing file, referenced by
// a path; internal/storage owns the binary layout, the locking, and the
// navigate/add-child/remove-child/defragment algorithms, and this
// package exposes them as the familiar FS/Folder/File surface defined
// by internal/vfscore.
package filevfs
