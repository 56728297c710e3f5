package transfer

import "context"

// Archive is a decoded upload: its collections, and the photo binaries it
// carried when it had any.
type Archive struct {
	Dataset Dataset
	Photos  PhotoStage
}

// Close releases the staged photos. A nil archive is valid.
func (a *Archive) Close() error {
	if a == nil || a.Photos == nil {
		return nil
	}
	return a.Photos.Close()
}

// PhotoStage holds photo binaries extracted from an archive outside live
// storage. Nothing reaches live storage until Publish.
type PhotoStage interface {
	// Publish copies every staged binary to live storage.
	Publish(ctx context.Context) error
	// Revoke deletes the binaries Publish created. Keys that already
	// existed before Publish are left alone.
	Revoke(ctx context.Context) error
	// Close discards the staged files.
	Close() error
}
