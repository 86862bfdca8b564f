package errors

// ErrorCode identifies a category of application error in responses and logs.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 2000
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2001
	ErrorCode_AUTH_USER_NOT_FOUND      ErrorCode = 2002
	ErrorCode_AUTH_USER_ALREADY_EXISTS ErrorCode = 2003

	// Audio
	ErrorCode_AUDIO_NOT_FOUND        ErrorCode = 3000
	ErrorCode_AUDIO_UNSUPPORTED_TYPE ErrorCode = 3001
	ErrorCode_AUDIO_UPLOAD_FAILED    ErrorCode = 3002

	// Transcription jobs
	ErrorCode_JOB_NOT_FOUND     ErrorCode = 4000
	ErrorCode_JOB_CONFLICT      ErrorCode = 4001
	ErrorCode_JOB_NOT_RETRYABLE ErrorCode = 4002
	ErrorCode_JOB_NOT_EDITABLE  ErrorCode = 4003
	ErrorCode_JOB_QUEUE_FULL    ErrorCode = 4004

	// Inference
	ErrorCode_INFERENCE_FAILED ErrorCode = 5000

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 6000
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 6001

	// Database
	ErrorCode_DB_QUERY_FAILED ErrorCode = 7000
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_INVALID_CREDENTIALS:   "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:        "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:   "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUDIO_NOT_FOUND:            "AUDIO_NOT_FOUND",
	ErrorCode_AUDIO_UNSUPPORTED_TYPE:     "AUDIO_UNSUPPORTED_TYPE",
	ErrorCode_AUDIO_UPLOAD_FAILED:        "AUDIO_UPLOAD_FAILED",
	ErrorCode_JOB_NOT_FOUND:              "JOB_NOT_FOUND",
	ErrorCode_JOB_CONFLICT:               "JOB_CONFLICT",
	ErrorCode_JOB_NOT_RETRYABLE:          "JOB_NOT_RETRYABLE",
	ErrorCode_JOB_NOT_EDITABLE:           "JOB_NOT_EDITABLE",
	ErrorCode_JOB_QUEUE_FULL:             "JOB_QUEUE_FULL",
	ErrorCode_INFERENCE_FAILED:           "INFERENCE_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the symbolic name for the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
