package serverutils

// SuccessEnvelope is the uniform success payload for every endpoint.
type SuccessEnvelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorEnvelope mirrors the remote-service error convention: the detail field
// carries the human-readable message clients surface verbatim.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Detail  string `json:"detail"`
}

func SuccessResponse[T any](message string, data T) SuccessEnvelope[T] {
	return SuccessEnvelope[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, detail string) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Code:    code,
		Detail:  detail,
	}
}
