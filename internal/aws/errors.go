package aws

import "fmt"

// CredentialsGuidance is the message returned when no credentials can be found.
const CredentialsGuidance = "AWS credentials not configured. Please configure AWS CLI or set environment variables."

// CredentialsError reports that the credential chain produced nothing usable.
type CredentialsError struct {
	Err error
}

func (e *CredentialsError) Error() string {
	return CredentialsGuidance
}

func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// SessionError reports any other failure while setting up the shared session.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("Failed to initialize AWS session: %v", e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
