//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If a code disappears from the list, don't reuse it for something else, that code belonged to a retired error.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound         = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody            = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedModelID         = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed model ID")}
	ErrPassportNotFound         = Error{Code: 40004, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("passport not found")}
	ErrMalformedCertificateID   = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed certificate ID")}
	ErrCertificateNotFound      = Error{Code: 40006, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("certificate not found")}
	ErrMalformedParam           = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed parameter")}
	ErrPassportAlreadyExists    = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("passport already registered")}
	ErrCertificateAlreadyExists = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("certificate already registered")}
	ErrInvalidPassport          = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid passport")}
	ErrInvalidCertificate       = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid certificate")}
	ErrModelFileNotAvailable    = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("model file not available")}
	ErrInputFileNotAvailable    = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("input file not available")}
	ErrVerificationNotPossible  = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("verification request incomplete")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrToolkitUnavailable         = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("proving toolkit unavailable")}
)
