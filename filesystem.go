package main

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// keepFileName is the placeholder that keeps otherwise empty output
// directories under version control.
const keepFileName = ".keep"

var eligibleExtensions = map[string]bool{
	".json": true,
	".csv":  true,
}

// TraversalError means the source root could not be walked at all.
type TraversalError struct {
	Root string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("Error walking local directory %s: %s", e.Root, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

func isEligibleFile(name string) bool {
	if name == keepFileName {
		return false
	}

	return eligibleExtensions[filepath.Ext(name)]
}

// walkEligibleFiles calls fn for every regular, eligible file below root in
// lexical order. relPath is relative to root and uses the OS separator.
func walkEligibleFiles(root string, logger log.FieldLogger, fn func(fullPath, relPath string)) error {
	return filepath.WalkDir(root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if fullPath == root {
				return &TraversalError{Root: root, Err: err}
			}
			logger.Warn(fmt.Sprintf("Skipping unreadable path %s: %s", fullPath, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !isEligibleFile(d.Name()) {
			return nil
		}

		relPath, relErr := filepath.Rel(root, fullPath)
		if relErr != nil {
			logger.Warn(fmt.Sprintf("Skipping %s: %s", fullPath, relErr))
			return nil
		}
		fn(fullPath, relPath)

		return nil
	})
}

// walkUploadTasks produces one UploadTask per eligible file under root. Each
// task is handed to fn before the walk continues.
func walkUploadTasks(root, destinationPrefix string, logger log.FieldLogger, fn func(UploadTask)) error {
	return walkEligibleFiles(root, logger, func(fullPath, relPath string) {
		fn(UploadTask{
			LocalPath:  fullPath,
			RemotePath: remotePathFor(destinationPrefix, relPath),
		})
	})
}

func remotePathFor(destinationPrefix, relPath string) string {
	return path.Join(destinationPrefix, filepath.ToSlash(relPath))
}
