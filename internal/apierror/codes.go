package apierror

// Error type URIs following the urn:macrolog:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:macrolog:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:macrolog:error:not_found"

	// TypeConflict indicates a resource conflict (409)
	TypeConflict = "urn:macrolog:error:conflict"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:macrolog:error:rate_limit"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:macrolog:error:unauthorized"

	// TypeForbidden indicates insufficient permissions (403)
	TypeForbidden = "urn:macrolog:error:forbidden"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:macrolog:error:internal"

	// TypeInvalidUUID indicates an invalid UUID format in request (400)
	TypeInvalidUUID = "urn:macrolog:error:invalid_uuid"

	// TypeFutureTimestamp indicates a timestamp too far in the future (400)
	TypeFutureTimestamp = "urn:macrolog:error:future_timestamp"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:macrolog:error:bad_request"

	// TypeUpstream indicates an external provider failure (502)
	TypeUpstream = "urn:macrolog:error:upstream"

	// TypeServiceUnavailable indicates a temporarily unavailable service (503)
	TypeServiceUnavailable = "urn:macrolog:error:service_unavailable"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation      = "Validation Error"
	TitleNotFound        = "Resource Not Found"
	TitleConflict        = "Resource Conflict"
	TitleRateLimit       = "Rate Limit Exceeded"
	TitleUnauthorized    = "Authentication Required"
	TitleForbidden       = "Permission Denied"
	TitleInternal        = "Internal Server Error"
	TitleInvalidUUID     = "Invalid UUID Format"
	TitleFutureTimestamp = "Future Timestamp Not Allowed"
	TitleBadRequest      = "Bad Request"
	TitleUpstream        = "Upstream Service Error"
	TitleUnavailable     = "Service Unavailable"
)
