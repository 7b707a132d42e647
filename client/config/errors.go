package config

import "github.com/gear6io/plvclient/pkg/errors"

// Error codes for client config package
var (
	// File operation errors
	ErrConfigFileReadFailed    = errors.MustNewCode("client_config.file_read_failed")
	ErrConfigFileParseFailed   = errors.MustNewCode("client_config.file_parse_failed")
	ErrConfigFileWriteFailed   = errors.MustNewCode("client_config.file_write_failed")
	ErrConfigFileMarshalFailed = errors.MustNewCode("client_config.file_marshal_failed")

	// Validation errors
	ErrServerAddressEmpty   = errors.MustNewCode("client_config.server_address_empty")
	ErrServerPortInvalid    = errors.MustNewCode("client_config.server_port_invalid")
	ErrReadBufferInvalid    = errors.MustNewCode("client_config.read_buffer_invalid")
	ErrMaxFrameSizeInvalid  = errors.MustNewCode("client_config.max_frame_size_invalid")
	ErrViewerAddressInvalid = errors.MustNewCode("client_config.viewer_address_invalid")
	ErrArchiveIncomplete    = errors.MustNewCode("client_config.archive_incomplete")
	ErrLogFormatInvalid     = errors.MustNewCode("client_config.log_format_invalid")
)
