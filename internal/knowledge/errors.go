package knowledge

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in *Error) by Store operations.
// Match them with errors.Is.
var (
	ErrDomainNotFound      = errors.New("domain not found")
	ErrDomainExists        = errors.New("domain already exists")
	ErrTopicNotFound       = errors.New("topic not found")
	ErrTopicExists         = errors.New("topic already exists")
	ErrExplorationNotFound = errors.New("exploration not found")
	ErrInvalidName         = errors.New("invalid name")
	ErrEmptyQuery          = errors.New("empty search query")
)

// Error is the tagged failure returned at the store boundary. Kind is
// one of the sentinels above; the remaining fields identify the entry
// the operation was addressing.
type Error struct {
	Kind    error
	Project string
	Domain  string
	Topic   string
}

func (e *Error) Error() string {
	switch {
	case e.Topic != "":
		return fmt.Sprintf("%v: %s/%s/%s", e.Kind, e.Project, e.Domain, e.Topic)
	case e.Domain != "":
		return fmt.Sprintf("%v: %s/%s", e.Kind, e.Project, e.Domain)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Project)
	}
}

// Unwrap exposes Kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error { return e.Kind }

func notFoundDomain(project, domain string) error {
	return &Error{Kind: ErrDomainNotFound, Project: project, Domain: domain}
}

func notFoundTopic(project, domain, topic string) error {
	return &Error{Kind: ErrTopicNotFound, Project: project, Domain: domain, Topic: topic}
}
