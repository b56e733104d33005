package telemetry

import "codeberg.org/mutker/radiolinkd/internal/errors"

const (
	// Configuration errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")
	ErrInvalidBroker = errors.ErrorCode("telemetry_invalid_broker")

	// Feed errors
	ErrFeedConnect = errors.ErrorCode("telemetry_feed_connect_failed")
	ErrFeedEncode  = errors.ErrorCode("telemetry_feed_encode_failed")

	// Storage errors
	ErrStorageInit   = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("telemetry_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("telemetry_storage_close_failed")

	// Operation errors
	ErrOperationTimeout = errors.ErrorCode("telemetry_operation_timeout")
)
