// Package errors: 가챠 트래커 서비스 전체에서 사용되는 에러 타입들을 정의한다.
// 표준 Go 에러 스타일(Error/Unwrap)을 따른다.
package errors

import "fmt"

// APIError: 외부 가챠 로그 API 호출 중 발생한 에러
type APIError struct {
	Operation  string // 수행 중이던 API 작업
	StatusCode int    // HTTP 상태 코드 (0이면 네트워크 오류)
	Retcode    int    // 업스트림 retcode (0이면 HTTP 레벨 오류)
	Err        error  // 원인 에러
}

func (e APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("api error operation=%s status=%d retcode=%d", e.Operation, e.StatusCode, e.Retcode)
	}
	return fmt.Sprintf("api error operation=%s status=%d retcode=%d: %v", e.Operation, e.StatusCode, e.Retcode, e.Err)
}

func (e APIError) Unwrap() error { return e.Err }

// NewAPIError: API 에러를 생성한다.
func NewAPIError(operation string, statusCode, retcode int, cause error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Retcode:    retcode,
		Err:        cause,
	}
}

// AuthKeyError: authkey가 유효하지 않거나 만료되었을 때 발생하는 에러
// 작업 전체를 중단시키는 치명적 에러다. (retcode -101)
type AuthKeyError struct {
	Retcode int
}

func (e AuthKeyError) Error() string {
	return fmt.Sprintf("authkey invalid or expired retcode=%d", e.Retcode)
}

// NewAuthKeyError: authkey 에러를 생성한다.
func NewAuthKeyError(retcode int) *AuthKeyError {
	return &AuthKeyError{Retcode: retcode}
}

// SchemaError: 파일 익스포트의 스키마를 인식하지 못했을 때 발생하는 에러
// 부분 파싱 없이 작업 전체를 즉시 실패시킨다.
type SchemaError struct {
	Detail string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("unrecognized export schema: %s", e.Detail)
}

// NewSchemaError: 스키마 에러를 생성한다.
func NewSchemaError(detail string) *SchemaError {
	return &SchemaError{Detail: detail}
}

// CacheError: 진행 상태 저장소(Valkey) 작업 중 발생한 에러
type CacheError struct {
	Operation string // get, set, delete 등
	Key       string
	Err       error
}

func (e CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache error operation=%s key=%s", e.Operation, e.Key)
	}
	return fmt.Sprintf("cache error operation=%s key=%s: %v", e.Operation, e.Key, e.Err)
}

func (e CacheError) Unwrap() error { return e.Err }

// NewCacheError: 캐시 에러를 생성한다.
func NewCacheError(operation, key string, cause error) *CacheError {
	return &CacheError{
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// ValidationError: 입력 검증 실패 에러
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error field=%s: %s", e.Field, e.Message)
}

// NewValidationError: 검증 에러를 생성한다.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ServiceError: 내부 서비스 로직 에러
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

func (e ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("service error service=%s operation=%s", e.Service, e.Operation)
	}
	return fmt.Sprintf("service error service=%s operation=%s: %v", e.Service, e.Operation, e.Err)
}

func (e ServiceError) Unwrap() error { return e.Err }

// NewServiceError: 서비스 에러를 생성한다.
func NewServiceError(service, operation string, cause error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       cause,
	}
}
