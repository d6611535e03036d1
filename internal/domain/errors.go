package domain

import "errors"

var (
	// ErrPayloadNotFound: extraction markers absent from the page.
	ErrPayloadNotFound = errors.New("payload markers not found")
	// ErrMalformedPayload: markers found but the patched fragment is not the expected JSON.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrFieldMissing: a raw record lacks (or carries an unusable) required field.
	ErrFieldMissing = errors.New("field missing")
	// ErrBatchRejected: no partition key could be derived from the batch.
	ErrBatchRejected = errors.New("batch rejected")
	// ErrSchema: the partition schema could not be ensured.
	ErrSchema = errors.New("schema ensure failed")
	// ErrPersist: the batch transaction failed; nothing was written.
	ErrPersist = errors.New("persist failed")
	// ErrInvalidPartition: the partition key is not usable as a table name.
	ErrInvalidPartition = errors.New("invalid partition key")
	// ErrNotFound is returned by read paths for unknown partitions.
	ErrNotFound = errors.New("not found")
)

// ReasonFieldMissing is the Skip.Reason recorded for ErrFieldMissing.
const ReasonFieldMissing = "FieldMissingError"
