// Package flowstate tracks in-flight single sign-on logins between the
// redirect to the identity provider and the callback.
package flowstate

import "time"

type LoginFlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flowState *LoginFlowState) error
	Get(state string) (*LoginFlowState, error)
	Delete(state string) error
}
