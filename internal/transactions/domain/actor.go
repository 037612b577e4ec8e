package domain

import "github.com/google/uuid"

const systemActorName = "System"

// Actor is who caused a change. A nil UserID means the system did.
type Actor struct {
	UserID *uuid.UUID
	Name   string
	Source Source
}

// SystemActor is used by background jobs and automatic transitions.
func SystemActor() Actor {
	return Actor{Name: systemActorName, Source: SourceSystem}
}

// UserActor is a human acting through the application.
func UserActor(id uuid.UUID, name string) Actor {
	if name == "" {
		name = "User"
	}
	return Actor{UserID: &id, Name: name, Source: SourceManual}
}

// APIActor is an external system posting through a company API token.
func APIActor(tokenName string) Actor {
	if tokenName == "" {
		tokenName = "API"
	}
	return Actor{Name: tokenName, Source: SourceAPI}
}

// IsSystem reports whether no user is attached.
func (a Actor) IsSystem() bool {
	return a.UserID == nil
}

func (a Actor) displayName() string {
	if a.Name == "" {
		return systemActorName
	}
	return a.Name
}
