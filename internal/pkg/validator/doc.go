// Package validator provides a small validation abstraction for use case
// inputs.
//
// Business code depends on the Validator interface; V10Validator implements it
// on top of go-playground/validator v10 with English messages and the
// username, password, and role rules.
package validator
