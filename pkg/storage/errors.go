package storage

import "errors"

var (
	ErrMissingBucket = errors.New("storage bucket is required")
	ErrObjectNotFound = errors.New("storage object not found")
	ErrUploadFailed   = errors.New("failed to upload object")
	ErrDeleteFailed   = errors.New("failed to delete object")
	ErrListFailed     = errors.New("failed to list objects")
)
