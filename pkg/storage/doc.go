// Package storage manages the destination directory for downloaded videos.
//
// Each post's video lives at <dir>/<postID>.mp4. The Manager creates the
// directory up front and remembers which posts already have a file so the
// walker can note likely overwrite prompts before they happen. The actual
// write is done by the external transcoder.
//
// Usage:
//
//	manager, err := storage.NewManager(dest)
//	if err != nil {
//	    return err
//	}
//	path := manager.VideoPath("1629307668568475652")
package storage
